package uri

import (
	"strings"

	"github.com/pkg/errors"
)

type RefResolver struct {
	base URI
}

func NewRefResolver(baseURI URI) (*RefResolver, error) {
	if baseURI.IsRelativeRef() {
		return nil, errors.New("baseURI cannot be relative ref")
	}
	return &RefResolver{base: baseURI.Clone()}, nil
}

// Resolve transforms ref into a target URI.
// The result shares no memory with ref or the base.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.2
func (rr *RefResolver) Resolve(ref URI) URI {
	out := ref.Clone()
	base := rr.base.Clone()

	switch {
	case out.Scheme != "":
		out.Path = removeDotSegments(out.Path)
	case out.Authority != nil:
		out.Scheme = base.Scheme
		out.Path = removeDotSegments(out.Path)
	case out.Path == "":
		out.Scheme, out.Authority = base.Scheme, base.Authority
		out.Path = base.Path
		if out.Query == nil {
			out.Query = base.Query
		}
	default:
		out.Scheme, out.Authority = base.Scheme, base.Authority
		if !strings.HasPrefix(out.Path, "/") {
			out.Path = mergePath(base, out)
		}
		out.Path = removeDotSegments(out.Path)
	}

	return out
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.3
func mergePath(base, ref URI) string {
	if base.Authority != nil && base.Path == "" {
		return "/" + ref.Path
	}

	if idx := strings.LastIndexByte(base.Path, '/'); idx >= 0 {
		return base.Path[:idx+1] + ref.Path
	}

	return ref.Path
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.4
func removeDotSegments(path string) string {
	out := make([]string, 0, strings.Count(path, "/")+1)
	pop := func() {
		if len(out) > 0 {
			out = out[:len(out)-1]
		}
	}

	for len(path) > 0 {
		var found bool
		// A. Drop a leading "../" or "./".
		if path, found = strings.CutPrefix(path, "../"); found {
			continue
		}
		if path, found = strings.CutPrefix(path, "./"); found {
			continue
		}

		// B. Replace a leading "/./" or a complete "/." with "/".
		if path, found = strings.CutPrefix(path, "/./"); found {
			path = "/" + path
			continue
		} else if path == "/." {
			path = "/"
			continue
		}

		// C. Same as B for "/../" and "/..", also removing the last output segment.
		if path, found = strings.CutPrefix(path, "/../"); found {
			pop()
			path = "/" + path
			continue
		} else if path == "/.." {
			pop()
			path = "/"
			continue
		}

		// D. A lone "." or "..".
		if path == ".." || path == "." {
			break
		}

		// E. Move the first segment, with its leading "/", to the output.
		idx := strings.IndexByte(path[1:], '/') + 1
		if idx == 0 {
			idx = len(path)
		}
		out = append(out, path[:idx])
		path = path[idx:]
	}

	return strings.Join(out, "")
}
