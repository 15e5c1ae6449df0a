package db

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	whereClause   = `( WHERE \w+=\$\d+( AND \w+=\$\d+)*| WHERE \w+ IN \([^;]+\))?`
	columnList    = `[\w\s,]+`
	orderByClause = `( ORDER BY \w+ (ASC|DESC)(, \w+ (ASC|DESC))*)?`
)

var (
	selectPattern = regexp.MustCompile(`^SELECT ` + columnList + ` FROM \w+` + whereClause + orderByClause + `( LIMIT \d+)?$`)
	insertPattern = regexp.MustCompile(`^INSERT INTO \w+ \(` + columnList + `\) VALUES \(\$\d+(, \$\d+)*\) RETURNING ` + columnList + `$`)
	updatePattern = regexp.MustCompile(`^UPDATE \w+ SET \w+=\$\d+(, \w+=\$\d+)*` + whereClause + `( RETURNING ` + columnList + `)?$`)
	deletePattern = regexp.MustCompile(`^DELETE FROM \w+` + whereClause + `$`)
)

//Validator detects statements which were not rendered by the query builder (e.g. inlined values)
type Validator struct {
	blockQueries bool
	logger       *zap.SugaredLogger
}

func NewValidator(blockQueries bool, logger *zap.SugaredLogger) *Validator {
	return &Validator{blockQueries, logger}
}

func (v *Validator) Validate(query string) error {
	if selectPattern.MatchString(query) ||
		insertPattern.MatchString(query) ||
		updatePattern.MatchString(query) ||
		deletePattern.MatchString(query) ||
		strings.HasPrefix(query, "SHOW TRANSACTION") {
		return nil
	}
	msg := fmt.Sprintf("Found potential SQL injection for query: %s", query)
	if v.blockQueries {
		return errors.New(msg)
	}
	v.logger.Warn(msg)
	return nil
}
