package ui

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"impactdash/domain/filter"
	"impactdash/internal/errors"
)

// parseCriteria reads the table filters from the query string.
// Set filters accept repeated or comma separated values.
func parseCriteria(c *gin.Context) (filter.Criteria, error) {
	criteria := filter.Criteria{
		Batches:       listParam(c, "batch"),
		Sectors:       listParam(c, "sector"),
		Phases:        listParam(c, "phase"),
		Cities:        listParam(c, "city"),
		States:        listParam(c, "state"),
		Organizations: listParam(c, "organization"),
		Query:         strings.TrimSpace(c.Query("q")),
	}

	for _, v := range listParam(c, "sdg") {
		id, err := strconv.Atoi(v)
		if err != nil || id < 1 || id > 17 {
			return filter.Criteria{}, errors.InvalidInput("Ungültiges SDG: " + v)
		}
		criteria.SDGs = append(criteria.SDGs, id)
	}

	var err error
	if criteria.Discrepancy, err = rangeParam(c, "discrepancy"); err != nil {
		return filter.Criteria{}, err
	}
	if criteria.Freshness, err = rangeParam(c, "freshness"); err != nil {
		return filter.Criteria{}, err
	}
	return criteria, nil
}

// rangeParam reads <name>Min and <name>Max. A missing bound is open.
func rangeParam(c *gin.Context, name string) (*filter.Range, error) {
	minRaw, hasMin := c.GetQuery(name + "Min")
	maxRaw, hasMax := c.GetQuery(name + "Max")
	if !hasMin && !hasMax {
		return nil, nil
	}

	r := &filter.Range{Min: 0, Max: 1e9}
	if hasMin {
		v, err := strconv.ParseFloat(minRaw, 64)
		if err != nil {
			return nil, errors.InvalidInput("Ungültiger Wert für " + name + "Min")
		}
		r.Min = v
	}
	if hasMax {
		v, err := strconv.ParseFloat(maxRaw, 64)
		if err != nil {
			return nil, errors.InvalidInput("Ungültiger Wert für " + name + "Max")
		}
		r.Max = v
	}
	if r.Min > r.Max {
		return nil, errors.InvalidInput(name + "Min ist größer als " + name + "Max")
	}
	return r, nil
}
