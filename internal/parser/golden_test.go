package parser

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenCase is one stored post with the parts of its result that must not
// drift. Only the listed fields are compared.
type goldenCase struct {
	Source string `json:"source"`
	Body   string `json:"body"`
	Expect struct {
		Status          string                 `json:"status"`
		Fields          map[string]interface{} `json:"fields"`
		Unrecognized    []string               `json:"unrecognized,omitempty"`
		MissingSections []string               `json:"missing_sections,omitempty"`
	} `json:"expect"`
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "golden", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	p := newTestParser(t, true)
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)
			var gc goldenCase
			require.NoError(t, json.Unmarshal(data, &gc))

			res, err := p.ParsePost(context.Background(), gc.Source, gc.Body)
			require.NoError(t, err)
			assert.Equal(t, gc.Expect.Status, res.Status)

			raw, err := json.Marshal(res.Record)
			require.NoError(t, err)
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &got))
			for name, want := range gc.Expect.Fields {
				v, ok := got[name]
				require.True(t, ok, "field %s missing from record", name)
				assert.Equal(t, want, v, name)
			}

			if gc.Expect.Unrecognized != nil {
				var names []string
				for _, u := range res.Unrecognized {
					names = append(names, u.Field)
				}
				assert.ElementsMatch(t, gc.Expect.Unrecognized, names)
			}
			for _, s := range gc.Expect.MissingSections {
				assert.Contains(t, res.MissingSections, s)
			}
		})
	}
}
