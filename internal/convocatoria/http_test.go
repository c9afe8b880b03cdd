// Copyright (c) 2026 CLinCoDa. All rights reserved.

package convocatoria

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchPayload_TrimestreThreeStates(t *testing.T) {
	tests := []struct {
		name string
		body string
		want func(t *testing.T, got **int, err error)
	}{
		{
			name: "absent_leaves_untouched",
			body: `{"nombre":"Renombrada"}`,
			want: func(t *testing.T, got **int, err error) {
				require.NoError(t, err)
				assert.Nil(t, got)
			},
		},
		{
			name: "explicit_null_clears",
			body: `{"trimestre":null}`,
			want: func(t *testing.T, got **int, err error) {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Nil(t, *got)
			},
		},
		{
			name: "value_sets",
			body: `{"trimestre":2}`,
			want: func(t *testing.T, got **int, err error) {
				require.NoError(t, err)
				require.NotNil(t, got)
				require.NotNil(t, *got)
				assert.Equal(t, 2, **got)
			},
		},
		{
			name: "malformed_rejected",
			body: `{"trimestre":"segundo"}`,
			want: func(t *testing.T, got **int, err error) {
				require.Error(t, err)
				assert.Nil(t, got)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var payload patchPayload
			require.NoError(t, json.Unmarshal([]byte(test.body), &payload))

			got, err := payload.trimestrePatch()
			test.want(t, got, err)
		})
	}
}
