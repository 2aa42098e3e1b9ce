package listaccess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterEq(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{
			name:  "plain value",
			field: "UserPrincipalName",
			value: "ann@school.example",
			want:  "&$filter=fields/UserPrincipalName eq 'ann@school.example'",
		},
		{
			name:  "single quote doubled",
			field: "Title",
			value: "O'Brien",
			want:  "&$filter=fields/Title eq 'O''Brien'",
		},
		{
			name:  "multiple quotes",
			field: "Title",
			value: "it's Ann's",
			want:  "&$filter=fields/Title eq 'it''s Ann''s'",
		},
		{
			name:  "empty value",
			field: "Status",
			value: "",
			want:  "&$filter=fields/Status eq ''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterEq(tt.field, tt.value))
		})
	}
}

func TestTopN(t *testing.T) {
	assert.Equal(t, "&$top=500", TopN(500))
	assert.Equal(t, "&$top=1", TopN(1))
}
