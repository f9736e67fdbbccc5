package board

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const bodyPreviewMaxLines = 20

// priorityKeys are written first, in this order; remaining keys follow
// alphabetically.
var priorityKeys = []string{
	"id", "title", "list_order", "created", "updated",
	"due", "range", "labels", "icon", "url", "estimate",
}

// scanCard splits a card file into frontmatter lines (between the first two
// "---" lines) and body lines. A file that does not start with "---" is all
// body. Callbacks return false to stop early.
func scanCard(s *bufio.Scanner, onFrontmatter, onBody func(line string) bool) {
	dashes := 0
	first := true
	for s.Scan() {
		line := s.Text()
		if first {
			first = false
			if strings.TrimSpace(line) != "---" {
				dashes = 2
			}
		}
		if dashes < 2 && strings.TrimSpace(line) == "---" {
			dashes++
			continue
		}
		switch {
		case dashes == 1:
			if onFrontmatter != nil && !onFrontmatter(line) {
				return
			}
		case dashes >= 2:
			if onBody != nil && !onBody(line) {
				return
			}
		}
	}
}

// readHeader parses the frontmatter of path and returns it with a short
// preview of the body.
func readHeader(path string) (Metadata, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, "", err
	}
	defer f.Close()

	var front, preview bytes.Buffer
	lines := 0
	s := bufio.NewScanner(f)
	scanCard(s,
		func(line string) bool {
			front.WriteString(line)
			front.WriteByte('\n')
			return true
		},
		func(line string) bool {
			lines++
			if lines > bodyPreviewMaxLines {
				return false
			}
			if preview.Len() < PreviewMaxLen {
				preview.WriteString(line)
				preview.WriteByte('\n')
			}
			return true
		},
	)
	if err := s.Err(); err != nil {
		return Metadata{}, "", fmt.Errorf("failed to read card file: %w", err)
	}

	var meta Metadata
	if front.Len() > 0 {
		if err := yaml.Unmarshal(front.Bytes(), &meta); err != nil {
			return Metadata{}, "", fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}
	return meta, TruncatePreview(preview.String()), nil
}

// ReadBody returns the markdown body of a card file, without frontmatter.
func ReadBody(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	s := bufio.NewScanner(f)
	scanCard(s, nil, func(line string) bool {
		body.WriteString(line)
		body.WriteByte('\n')
		return true
	})
	if err := s.Err(); err != nil {
		return "", fmt.Errorf("failed to read card body: %w", err)
	}
	return body.String(), nil
}

// readRawFrontmatter returns the frontmatter of path as nodes so that
// unknown keys can be written back untouched. A missing file yields nil.
func readRawFrontmatter(path string) (map[string]*yaml.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	s := bufio.NewScanner(f)
	scanCard(s, func(line string) bool {
		buf.WriteString(line)
		buf.WriteByte('\n')
		return true
	}, func(string) bool { return false })
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frontmatter: %w", err)
	}
	if buf.Len() == 0 {
		return nil, nil
	}

	raw, err := decodeMapping(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return raw, nil
}

// decodeMapping parses a YAML mapping document into its value nodes by key.
// An empty document yields an empty map.
func decodeMapping(data []byte) (map[string]*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	fields := make(map[string]*yaml.Node)
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fields, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping, got %s", root.Tag)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		fields[root.Content[i].Value] = root.Content[i+1]
	}
	return fields, nil
}

var knownKeys = sync.OnceValue(func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeFor[Metadata]()
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name != "" {
			keys[name] = true
		}
	}
	return keys
})

// WriteCard writes meta and body to path. Frontmatter keys that Metadata does
// not know about are carried over from the existing file; known keys are
// always taken from meta so that cleared fields stay cleared.
func WriteCard(path string, meta Metadata, body string) error {
	existing, err := readRawFrontmatter(path)
	if err != nil {
		return fmt.Errorf("failed to read existing frontmatter: %w", err)
	}

	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	fields, err := decodeMapping(data)
	if err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	known := knownKeys()
	for k, v := range existing {
		if _, ok := fields[k]; !ok && !known[k] {
			fields[k] = v
		}
	}

	// checklist descriptions are free text; quote them so they survive a
	// round trip whatever they contain
	if checklist, ok := fields["checklist"]; ok && checklist.Kind == yaml.SequenceNode {
		for _, item := range checklist.Content {
			if item.Kind != yaml.MappingNode {
				continue
			}
			for i := 0; i+1 < len(item.Content); i += 2 {
				if item.Content[i].Value == "desc" {
					item.Content[i+1].Style = yaml.DoubleQuotedStyle
				}
			}
		}
	}

	front, err := marshalOrdered(fields)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n")
	buf.WriteString(body)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write card file: %w", err)
	}
	return nil
}

// marshalOrdered encodes fields with priority keys first, then the rest
// sorted, with trello_data always last.
func marshalOrdered(fields map[string]*yaml.Node) ([]byte, error) {
	var keys []string
	for _, k := range priorityKeys {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range fields {
		if !slices.Contains(priorityKeys, k) && k != "trello_data" {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	keys = append(keys, rest...)
	if _, ok := fields["trello_data"]; ok {
		keys = append(keys, "trello_data")
	}

	if len(keys) == 0 {
		return nil, nil
	}
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			fields[k],
		)
	}
	data, err := yaml.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
	}
	return data, nil
}
