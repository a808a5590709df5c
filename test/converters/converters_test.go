package converters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_Detect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []bool
	}{
		{
			name:  "ntttcp only",
			files: []string{"/results/ntttcp-sender-p64.log"},
			want:  []bool{true, false},
		},
		{
			name:  "fio only",
			files: []string{"/results/fio/fio-4k-randrw.log"},
			want:  []bool{false, true},
		},
		{
			name:  "unrelated files",
			files: []string{"/results/ica.log", "/results/ntttcp.txt"},
			want:  []bool{false, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []bool
			for _, converter := range List() {
				got = append(got, converter.Detect(tt.files))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
