package ingest

import (
	"fmt"

	"github.com/ternarybob/kengetal/internal/models"
	"gopkg.in/yaml.v3"
)

// parseYAML accepts the same two shapes as parseJSON: a mapping with headers
// and rows, or a sequence of mappings. Nodes are walked directly so column
// order follows the document.
func parseYAML(data []byte) (*models.Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyTable
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		return yamlObjectsTable(nil, root.Content)
	case yaml.MappingNode:
		var headers []string
		var rows []*yaml.Node
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, value := root.Content[i], root.Content[i+1]
			switch key.Value {
			case "headers":
				if err := value.Decode(&headers); err != nil {
					return nil, fmt.Errorf("decode yaml headers: %w", err)
				}
			case "rows":
				if value.Kind != yaml.SequenceNode {
					return nil, fmt.Errorf("decode yaml rows: expected a list at line %d", value.Line)
				}
				rows = value.Content
			}
		}
		if len(rows) > 0 && rows[0].Kind == yaml.SequenceNode {
			return yamlArrayTable(headers, rows)
		}
		return yamlObjectsTable(headers, rows)
	}
	return nil, fmt.Errorf("%w: yaml document must be a list or a mapping", ErrUnsupportedFormat)
}

func yamlArrayTable(headers []string, rows []*yaml.Node) (*models.Table, error) {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	records := [][]interface{}{header}
	for _, row := range rows {
		if row.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("decode yaml row: expected a list at line %d", row.Line)
		}
		rec := make([]interface{}, len(row.Content))
		for i, cell := range row.Content {
			rec[i] = yamlScalar(cell)
		}
		records = append(records, rec)
	}
	return buildTable(records)
}

func yamlObjectsTable(headers []string, rows []*yaml.Node) (*models.Table, error) {
	explicit := len(headers) > 0
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[h] = true
	}

	decoded := make([]models.Row, 0, len(rows))
	for _, node := range rows {
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("decode yaml row: expected a mapping at line %d", node.Line)
		}
		row := make(models.Row)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if !explicit && !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
			row[key] = yamlScalar(node.Content[i+1])
		}
		decoded = append(decoded, row)
	}

	records := [][]interface{}{make([]interface{}, len(headers))}
	for i, h := range headers {
		records[0][i] = h
	}
	for _, row := range decoded {
		rec := make([]interface{}, len(headers))
		for i, h := range headers {
			rec[i] = row[h]
		}
		records = append(records, rec)
	}
	return buildTable(records)
}

// yamlScalar keeps the literal text of a scalar so amounts are parsed by the
// same rules as csv cells. Nulls and nested nodes become nil.
func yamlScalar(node *yaml.Node) interface{} {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return nil
	}
	return node.Value
}
