// Package lineage resolves display names by walking a person's father chain.
package lineage

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/logger"
	"github.com/camden-git/familytreebackend/metrics"
	"github.com/camden-git/familytreebackend/models"
)

// MaxHops bounds every ancestor walk, cycles included.
const MaxHops = 20

// Ellipsis marks a name truncated by Options.MaxNames.
const Ellipsis = "…"

// PersonLookup fetches a person by code. A missing code must be reported as
// gorm.ErrRecordNotFound.
type PersonLookup interface {
	Get(ctx context.Context, code string) (*models.Person, error)
}

// Options tunes ResolveFullName. MaxNames <= 0 means no limit.
type Options struct {
	MaxNames        int
	IncludeNickname bool
}

// Resolver builds full names from the father chain. It never fails: data
// integrity problems end the walk early and are logged and counted.
type Resolver struct {
	people PersonLookup
	log    zerolog.Logger
}

func NewResolver(people PersonLookup) *Resolver {
	return &Resolver{people: people, log: logger.Component("lineage")}
}

// step is one visited node of a walk.
type step struct {
	code string
	name string
}

// walk collects nodes from code up the father chain. limit <= 0 collects
// until the chain ends. truncated is true when the limit stopped the walk
// while another father was still referenced.
func (r *Resolver) walk(ctx context.Context, code string, limit int) (start *models.Person, steps []step, truncated bool) {
	visited := make(map[string]struct{}, 8)
	current := code
	reads := 0
	defer func() { metrics.ResolveHops.Observe(float64(reads)) }()

	for hop := 0; ; hop++ {
		if hop >= MaxHops {
			r.anomaly(metrics.AnomalyDepthCeiling, code, current, nil)
			return start, steps, truncated
		}
		if _, seen := visited[current]; seen {
			r.anomaly(metrics.AnomalyCycle, code, current, nil)
			return start, steps, truncated
		}
		visited[current] = struct{}{}

		reads++
		person, err := r.people.Get(ctx, current)
		if err != nil {
			switch {
			case hop == 0 && errors.Is(err, gorm.ErrRecordNotFound):
				// unknown start code, nothing to report
			case errors.Is(err, gorm.ErrRecordNotFound):
				r.anomaly(metrics.AnomalyDanglingFather, code, current, nil)
			default:
				r.anomaly(metrics.AnomalyLookupFailure, code, current, err)
			}
			return start, steps, truncated
		}
		if hop == 0 {
			start = person
		}
		steps = append(steps, step{code: person.Code, name: strings.TrimSpace(person.Name)})

		if person.FatherCode == nil || *person.FatherCode == "" {
			return start, steps, false
		}
		if limit > 0 && len(steps) >= limit {
			return start, steps, true
		}
		current = *person.FatherCode
	}
}

func (r *Resolver) anomaly(kind, start, at string, err error) {
	metrics.LineageAnomalies.WithLabelValues(kind).Inc()
	ev := r.log.Warn().Str("kind", kind).Str("code", start).Str("at", at)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("lineage walk stopped early")
}

// ResolveFullName joins the node's name with its ancestors' names, self
// first. It returns "" when code does not exist.
func (r *Resolver) ResolveFullName(ctx context.Context, code string, opts Options) string {
	start, steps, truncated := r.walk(ctx, code, opts.MaxNames)
	if start == nil {
		return ""
	}

	parts := make([]string, 0, len(steps)+2)
	for _, s := range steps {
		if s.name != "" {
			parts = append(parts, s.name)
		}
	}
	if truncated {
		parts = append(parts, Ellipsis)
	}
	if opts.IncludeNickname {
		if nick := strings.TrimSpace(start.NicknameValue()); nick != "" {
			parts = append(parts, "("+nick+")")
		}
	}
	return strings.Join(parts, " ")
}

// Chain returns the codes visited from code up the father chain, self first.
func (r *Resolver) Chain(ctx context.Context, code string) []string {
	_, steps, _ := r.walk(ctx, code, 0)
	codes := make([]string, len(steps))
	for i, s := range steps {
		codes[i] = s.code
	}
	return codes
}
