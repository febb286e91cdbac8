package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalRequestValidator(t *testing.T) {
	v, err := NewCanonicalRequestValidator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{
			name:      "complete request",
			doc:       `{"Location":"Manhattan","Cuisine":"thai","DiningDate":"2030-01-02","DiningTime":"18:00","NumberOfPeople":2,"Email":"a@example.com"}`,
			wantValid: true,
		},
		{
			name:      "missing email",
			doc:       `{"Location":"Manhattan","Cuisine":"thai","DiningDate":"2030-01-02","DiningTime":"18:00","NumberOfPeople":2}`,
			wantField: "(root)",
		},
		{
			name:      "party size as string",
			doc:       `{"Location":"Manhattan","Cuisine":"thai","DiningDate":"2030-01-02","DiningTime":"18:00","NumberOfPeople":"2","Email":"a@example.com"}`,
			wantField: "NumberOfPeople",
		},
		{
			name:      "date not iso",
			doc:       `{"Location":"Manhattan","Cuisine":"thai","DiningDate":"next friday","DiningTime":"18:00","NumberOfPeople":2,"Email":"a@example.com"}`,
			wantField: "DiningDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.wantField, res.Errors[0].Field)
				assert.Contains(t, res.Error(), tt.wantField)
			}
		})
	}
}

func TestValidateJSON_NotJSON(t *testing.T) {
	v, err := NewCanonicalRequestValidator()
	require.NoError(t, err)

	_, err = v.ValidateJSON([]byte("not json"))
	assert.Error(t, err)
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 12}`)
	assert.Error(t, err)
}
