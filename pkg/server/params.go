package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
)

//Params reads request parameters: path variables take precedence over query parameters
type Params struct {
	vars  map[string]string
	query url.Values
}

func NewParams(r *http.Request) *Params {
	params := &Params{vars: mux.Vars(r)}
	if r.URL != nil {
		params.query = r.URL.Query()
	}
	return params
}

func (p *Params) lookup(name string) (string, bool) {
	if value, ok := p.vars[name]; ok {
		return value, true
	}
	if _, ok := p.query[name]; ok {
		return p.query.Get(name), true
	}
	return "", false
}

func (p *Params) String(name string) (string, error) {
	value, ok := p.lookup(name)
	if !ok {
		return "", fmt.Errorf("parameter '%s' undefined", name)
	}
	return value, nil
}

func (p *Params) Int(name string) (int, error) {
	value, err := p.String(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

//IntOrDefault returns def if the parameter is undefined. A defined but non-numeric or negative value is an error.
func (p *Params) IntOrDefault(name string, def int) (int, error) {
	value, ok := p.lookup(name)
	if !ok {
		return def, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s' is not a number", name)
	}
	if result < 0 {
		return 0, fmt.Errorf("parameter '%s' cannot be negative", name)
	}
	return result, nil
}
