package uri

import (
	"strings"

	"github.com/pkg/errors"
)

// Resolve resolves a (possibly relative) reference against base.
// base must not itself be a relative reference.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.2
func Resolve(base, ref URI) (URI, error) {
	if base.IsRelativeRef() {
		return URI{}, errors.New("base URI cannot be a relative reference")
	}

	out := ref
	switch {
	case ref.Scheme != "":
		// Absolute reference; base contributes nothing.
	case ref.Authority != nil:
		out.Scheme = base.Scheme
	case ref.Path != "":
		out.Scheme = base.Scheme
		out.Authority = base.Authority
		if !strings.HasPrefix(ref.Path, "/") {
			out.Path = mergePath(base, ref)
		}
	default:
		out.Scheme = base.Scheme
		out.Authority = base.Authority
		out.Path = base.Path
		if ref.Query == nil {
			out.Query = base.Query
		}
	}

	out.Path = removeDotSegments(out.Path)
	return out, nil
}

// mergePath joins a relative reference path onto the base: everything
// after the last slash of the base path is replaced by the reference.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.3
func mergePath(base, ref URI) string {
	if base.Authority != nil && base.Path == "" {
		return "/" + ref.Path
	}
	return base.Path[:strings.LastIndexByte(base.Path, '/')+1] + ref.Path
}

// removeDotSegments collapses "." and ".." segments, working on
// slash-split segments instead of the RFC's string-buffer shuffle.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.2.4
func removeDotSegments(path string) string {
	if path == "" || path == "." || path == ".." {
		return ""
	}

	out := make([]string, 0, strings.Count(path, "/")+1)
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			// Slash delimiters and current-location dots contribute
			// no segment.
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}

	joined := strings.Join(out, "/")
	if strings.HasPrefix(path, "/") {
		joined = "/" + joined
	}

	// A path ending in a slash or a dot segment names a directory; the
	// collapsed form keeps the trailing slash.
	tail := path[strings.LastIndexByte(path, '/')+1:]
	if (tail == "" || tail == "." || tail == "..") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}

	return joined
}
