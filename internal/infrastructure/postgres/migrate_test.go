package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/db?sslmode=disable": "pgx5://u:p@localhost:5432/db?sslmode=disable",
		"postgresql://u@db/mayorista":                      "pgx5://u@db/mayorista",
		"pgx5://u@db/mayorista":                            "pgx5://u@db/mayorista",
	}
	for in, want := range cases {
		assert.Equal(t, want, migrateURL(in), in)
	}
}
