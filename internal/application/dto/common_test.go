package dto_test

import (
	"testing"

	"github.com/jortega/erp-inventario/internal/application/dto"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPage_AplicaDefectosYTopes(t *testing.T) {
	cases := []struct {
		name       string
		in         dto.PageRequest
		wantLimit  int
		wantOffset int
	}{
		{"vacío toma defectos", dto.PageRequest{}, 20, 0},
		{"limit negativo vuelve al defecto", dto.PageRequest{Limit: -5}, 20, 0},
		{"limit sobre el tope se recorta a 100", dto.PageRequest{Limit: 500}, 100, 0},
		{"offset negativo se normaliza", dto.PageRequest{Limit: 10, Offset: -3}, 10, 0},
		{"valores válidos pasan intactos", dto.PageRequest{Limit: 50, Offset: 200}, 50, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.DefaultPage()
			assert.Equal(t, tc.wantLimit, tc.in.Limit)
			assert.Equal(t, tc.wantOffset, tc.in.Offset)
		})
	}
}
