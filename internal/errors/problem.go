package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// Problem type URIs
const (
	TypeValidation      = "/errors/validation"
	TypeParsing         = "/errors/parsing"
	TypeNotFound        = "/errors/not-found"
	TypeMethod          = "/errors/method-not-allowed"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeConfig          = "/errors/config"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeExport          = "/errors/export"
)

// Problem is an RFC 7807 body. Extensions sit beside the standard members
// in the encoded object; on a name clash the standard member wins.
type Problem struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Instance   string
	Extensions map[string]any
}

// NewProblem builds a problem for the request path instance
func NewProblem(status int, problemType, title, detail, instance string) *Problem {
	return &Problem{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// ProblemFor renders a problem of the given kind with its canonical
// status, type and title
func ProblemFor(kind Kind, detail, instance string) *Problem {
	s := kind.info()
	return NewProblem(s.status, s.problemType, s.title, detail, instance)
}

// Set adds or replaces an extension member
func (p *Problem) Set(key string, value any) *Problem {
	if p.Extensions == nil {
		p.Extensions = make(map[string]any)
	}
	p.Extensions[key] = value
	return p
}

// Render sets the response status for chi/render
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		out[k] = v
	}
	out["type"] = p.Type
	out["title"] = p.Title
	out["status"] = p.Status
	if p.Detail != "" {
		out["detail"] = p.Detail
	}
	if p.Instance != "" {
		out["instance"] = p.Instance
	}
	return json.Marshal(out)
}
