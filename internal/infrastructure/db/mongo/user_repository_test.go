package mongo

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkpress/blog-api/internal/core/domain"
)

func duplicateKeyErr(index, value string) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: fmt.Sprintf("E11000 duplicate key error collection: blog.users index: %s dup key: { : %q }", index, value),
		}},
	}
}

func TestDuplicateKeyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email collision", duplicateKeyErr("email_unique", "alice@example.com"), domain.ErrEmailTaken},
		{"username collision", duplicateKeyErr("username_unique", "alice"), domain.ErrUsernameTaken},
		{"username containing the word email", duplicateKeyErr("username_unique", "emailfan"), domain.ErrUsernameTaken},
		{"unrelated error", errors.New("connection reset"), nil},
		{"nil error", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duplicateKeyConflict(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
