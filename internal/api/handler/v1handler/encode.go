package v1handler

import (
	"fmt"
	"io"
	"net/http"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/serrors"

	"github.com/go-faster/jx"
)

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// decodeURLRequest reads the {"url": "..."} payload.
func decodeURLRequest(r io.Reader) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "could not read body")
	}

	var rawURL string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "url" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return fmt.Errorf("url: %w", err)
		}
		rawURL = v

		return nil
	}); err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid payload")
	}
	if rawURL == "" {
		return "", serrors.With(serrors.ErrBadRequest, "invalid payload: missing url")
	}

	return rawURL, nil
}

func encodeError(res *ErrorResponse) *jx.Encoder {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(res.Code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(res.Message) })
	})

	return e
}

// encodeVector writes the vector as an object keyed by feature name, in schema order.
func encodeVector(e *jx.Encoder, v *domain.FeatureVector) {
	e.Obj(func(e *jx.Encoder) {
		for i, name := range domain.Schema {
			e.Field(string(name), func(e *jx.Encoder) { e.Int(v[i]) })
		}
	})
}

func encodeDiagnostics(e *jx.Encoder, diags []domain.Diagnostic) {
	e.Arr(func(e *jx.Encoder) {
		for _, d := range diags {
			e.Obj(func(e *jx.Encoder) {
				e.Field("feature", func(e *jx.Encoder) { e.Str(string(d.Feature)) })
				e.Field("state", func(e *jx.Encoder) { e.Str(d.State) })
				if d.Cause != "" {
					e.Field("cause", func(e *jx.Encoder) { e.Str(d.Cause) })
				}
			})
		}
	})
}

func encodeClassification(c *domain.Classification) *jx.Encoder {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("url", func(e *jx.Encoder) { e.Str(c.URL) })
		e.Field("label", func(e *jx.Encoder) { e.Str(string(c.Label)) })
		e.Field("features", func(e *jx.Encoder) { encodeVector(e, &c.Vector) })
		e.Field("diagnostics", func(e *jx.Encoder) { encodeDiagnostics(e, c.Signals.Diagnostics()) })
	})

	return e
}

func encodeSignals(rawURL string, sigs *domain.Signals) *jx.Encoder {
	v := sigs.Vector()

	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("url", func(e *jx.Encoder) { e.Str(rawURL) })
		e.Field("vector", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, x := range v {
					e.Int(x)
				}
			})
		})
		e.Field("features", func(e *jx.Encoder) { encodeVector(e, &v) })
		e.Field("diagnostics", func(e *jx.Encoder) { encodeDiagnostics(e, sigs.Diagnostics()) })
	})

	return e
}

func encodeGraph(g *domain.LinkGraph) *jx.Encoder {
	counts := g.Counts()

	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(g.ID.String()) })
		e.Field("root", func(e *jx.Encoder) { e.Str(g.Root) })
		e.Field("nodes", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range g.Nodes {
					encodeNode(e, &g.Nodes[i])
				}
			})
		})
		e.Field("edges", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, edge := range g.Edges {
					e.Obj(func(e *jx.Encoder) {
						e.Field("from", func(e *jx.Encoder) { e.Str(edge.From) })
						e.Field("to", func(e *jx.Encoder) { e.Str(edge.To) })
					})
				}
			})
		})
		e.Field("counts", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, l := range []domain.Label{domain.LabelLegitimate, domain.LabelPhishing, domain.LabelError} {
					e.Field(string(l), func(e *jx.Encoder) { e.Int(counts[l]) })
				}
			})
		})
	})

	return e
}

func encodeNode(e *jx.Encoder, n *domain.Node) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("url", func(e *jx.Encoder) { e.Str(n.URL) })
		e.Field("label", func(e *jx.Encoder) { e.Str(string(n.Label)) })
		if n.Root {
			e.Field("root", func(e *jx.Encoder) { e.Bool(true) })
		}
		if n.Error != "" {
			e.Field("error", func(e *jx.Encoder) { e.Str(n.Error) })
		}
		if n.Features != nil {
			e.Field("features", func(e *jx.Encoder) { encodeVector(e, n.Features) })
		}
	})
}
