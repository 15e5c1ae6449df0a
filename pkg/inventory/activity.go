package inventory

import (
	"sync"
	"time"

	"github.com/dataspace-ops/emc/pkg/db"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

//activityClock hands out strictly increasing timestamps in the precision of the database columns
type activityClock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *activityClock) next(now time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now = now.Truncate(time.Microsecond)
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}

//AppendActivity adds an audit entry. Entries are never updated or deleted.
func (i *DefaultInventory) AppendActivity(activity *model.ActivityEntity) (*model.ActivityEntity, error) {
	entity := *activity
	entity.ID = uuid.NewString()
	if entity.Created.IsZero() {
		entity.Created = i.activityClock.next(i.now())
	}
	q, err := db.NewQuery(i.Conn, &entity)
	if err != nil {
		return nil, err
	}
	if err := q.Insert().Exec(); err != nil {
		return nil, errors.Wrapf(err, "failed to append activity '%s'", activity.Action)
	}
	return &entity, nil
}

//RecentActivity returns the newest entries first. Entries of this process never share a timestamp,
//entries written by other processes at the same instant are ordered by ID.
func (i *DefaultInventory) RecentActivity(limit int) ([]*model.ActivityEntity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	q, err := db.NewQuery(i.Conn, &model.ActivityEntity{})
	if err != nil {
		return nil, err
	}
	entities, err := q.Select().
		OrderBy(map[string]string{"Created": "DESC", "ID": "DESC"}).
		Limit(limit).
		GetMany()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list activities")
	}
	result := make([]*model.ActivityEntity, 0, len(entities))
	for _, entity := range entities {
		result = append(result, entity.(*model.ActivityEntity))
	}
	return result, nil
}
