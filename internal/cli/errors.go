package cli

import (
	"errors"
	"fmt"
)

var errNoEndpoint = errors.New("no endpoint configured; set PLANNER_ENDPOINT, pass --endpoint, or run `planner config set endpoint <url>`")

var errFlatNoWeeks = errors.New("the flat wire format keeps one record for every week; --week needs wire=days")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}
