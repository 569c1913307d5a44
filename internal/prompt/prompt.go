// Package prompt loads the therapist prompt template used for every chat
// request.
package prompt

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

const (
	// Placeholder is replaced by the submitted code.
	Placeholder = "{user_input}"

	frontMatterMarker = "---"
	suffix            = "\n\nClient code:\n" + Placeholder
)

// Source values reported by Template.Source.
const (
	SourceFile    = "file"
	SourceBuiltin = "builtin"
)

// DefaultBody is used when the prompt resource cannot be read.
const DefaultBody = "You are a compassionate but slightly dramatic therapist. " +
	"Your client is a piece of code. Respond to the code as if it were a person in therapy. " +
	"Be insightful, humorous, and supportive."

// Template is the immutable prompt shared by all requests.
type Template struct {
	text     string
	source   string
	path     string
	metadata map[string]any
}

// Load reads the prompt resource at path. It never fails: a missing or
// unreadable resource falls back to DefaultBody.
func Load(path string) *Template {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("path", path).Warn("Prompt file not found, using fallback prompt")
		} else {
			log.WithError(err).WithField("path", path).Error("Error loading prompt file, using fallback prompt")
		}
		return &Template{text: DefaultBody + suffix, source: SourceBuiltin, path: path}
	}

	body, meta := parse(string(data))
	log.WithFields(log.Fields{
		"path":  path,
		"bytes": len(body),
	}).Info("prompt.loaded")

	return &Template{text: body + suffix, source: SourceFile, path: path, metadata: meta}
}

// New builds a template from a literal containing Placeholder. It is used by
// tests and callers that bring their own template text.
func New(text string) *Template {
	return &Template{text: text, source: SourceBuiltin}
}

// parse strips a leading front-matter block delimited by "---" and returns
// the trimmed body together with the decoded metadata, if any.
func parse(content string) (string, map[string]any) {
	if !strings.HasPrefix(content, frontMatterMarker) {
		return strings.TrimSpace(content), nil
	}

	parts := strings.SplitN(content, frontMatterMarker, 3)
	if len(parts) < 3 {
		return strings.TrimSpace(content), nil
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(parts[1]), &meta); err != nil {
		log.WithError(err).Warn("Ignoring malformed prompt front matter")
		meta = nil
	}
	return strings.TrimSpace(parts[2]), meta
}

// Render substitutes input for the placeholder. The input is not rescanned,
// so placeholder-like text inside it is kept as is.
func (t *Template) Render(input string) string {
	return strings.ReplaceAll(t.text, Placeholder, input)
}

// Source reports whether the template came from the resource file or the
// built-in fallback.
func (t *Template) Source() string { return t.source }

// Path is the resource location that was attempted.
func (t *Template) Path() string { return t.path }

// Metadata returns the decoded front matter. It may be nil.
func (t *Template) Metadata() map[string]any { return t.metadata }
