package templates

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/xet-labs/xet-composer/internal/domain"
)

// placeholderRe matches {{name}} tokens. This is the entire substitution
// language: named references to declared, typed parameters. There is no
// expression evaluation, so caller input can never reach the renderer as
// code.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// RendererAdapter implements the SourceRenderer port as a pure text
// transform: each placeholder is replaced by the literal encoding of its
// validated value (addresses as EIP-55 checksummed hex, integers as
// decimal literals). Rendering the same set twice yields identical source.
type RendererAdapter struct {
	log *slog.Logger
}

// NewRendererAdapter creates a new source renderer.
func NewRendererAdapter(log *slog.Logger) *RendererAdapter {
	return &RendererAdapter{log: log.With("component", "RendererAdapter")}
}

// Render substitutes the validated set into the descriptor's source.
func (r *RendererAdapter) Render(
	ctx context.Context,
	d *domain.TemplateDescriptor,
	set *domain.ParameterSet,
) (*domain.RenderedSource, error) {
	if set.TemplateID != d.ID {
		return nil, &domain.RenderError{
			TemplateID: d.ID,
			Detail:     "parameter set was validated against a different template",
		}
	}

	var rerr *domain.RenderError
	source := placeholderRe.ReplaceAllStringFunc(d.Source, func(tok string) string {
		if rerr != nil {
			return tok
		}
		name := placeholderRe.FindStringSubmatch(tok)[1]
		if _, ok := d.Param(name); !ok {
			rerr = &domain.RenderError{TemplateID: d.ID, Placeholder: name, Detail: "not declared by template"}
			return tok
		}
		v, ok := set.Get(name)
		if !ok {
			rerr = &domain.RenderError{TemplateID: d.ID, Placeholder: name, Detail: "missing from parameter set"}
			return tok
		}
		lit, ok := encodeLiteral(v)
		if !ok {
			rerr = &domain.RenderError{TemplateID: d.ID, Placeholder: name, Detail: "value has no source encoding"}
			return tok
		}
		return lit
	})
	if rerr != nil {
		return nil, rerr
	}

	// A stray delimiter means the template itself is malformed; refuse to
	// hand ambiguous source to the compiler.
	if strings.Contains(source, "{{") || strings.Contains(source, "}}") {
		return nil, &domain.RenderError{TemplateID: d.ID, Detail: "unbalanced placeholder delimiters in template"}
	}

	r.log.Debug("template rendered", "template", d.ID, "bytes", len(source))
	return &domain.RenderedSource{
		TemplateID:   d.ID,
		ContractName: d.ContractName,
		Source:       source,
		Imports:      d.Imports,
	}, nil
}

// encodeLiteral maps a typed value to its source literal. The kinds form a
// closed set; anything else has no encoding and is rejected.
func encodeLiteral(v domain.ParamValue) (string, bool) {
	switch {
	case v.Kind == domain.KindAddress:
		return v.Address.Hex(), true
	case v.Kind.IsInteger() && v.Uint != nil:
		return v.Uint.String(), true
	default:
		return "", false
	}
}
