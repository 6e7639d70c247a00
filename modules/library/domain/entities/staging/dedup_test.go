package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicateKey(t *testing.T) {
	cases := []struct {
		name     string
		used     []string
		filename string
		want     string
	}{
		{
			name:     "no collision keeps name",
			used:     nil,
			filename: "a.mp3",
			want:     "a.mp3",
		},
		{
			name:     "first collision",
			used:     []string{"a.mp3"},
			filename: "a.mp3",
			want:     "a_1.mp3",
		},
		{
			name:     "second collision",
			used:     []string{"a.mp3", "a_1.mp3"},
			filename: "a.mp3",
			want:     "a_2.mp3",
		},
		{
			name:     "suffix slot already taken",
			used:     []string{"a.mp3", "a_1.mp3", "a_2.mp3", "a_3.mp3"},
			filename: "a.mp3",
			want:     "a_4.mp3",
		},
		{
			name:     "no extension",
			used:     []string{"readme"},
			filename: "readme",
			want:     "readme_1",
		},
		{
			name:     "dotted basename",
			used:     []string{"take.one.wav"},
			filename: "take.one.wav",
			want:     "take.one_1.wav",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			used := make(map[string]struct{}, len(tc.used))
			for _, k := range tc.used {
				used[k] = struct{}{}
			}
			assert.Equal(t, tc.want, DeduplicateKey(used, tc.filename))
		})
	}
}

func TestDeduplicateKey_RegistrationOrder(t *testing.T) {
	// Registering the same name three times yields a.mp3, a_1.mp3, a_2.mp3.
	used := map[string]struct{}{}
	var got []string
	for i := 0; i < 3; i++ {
		key := DeduplicateKey(used, "a.mp3")
		got = append(got, key)
		used[key] = struct{}{}
	}
	assert.Equal(t, []string{"a.mp3", "a_1.mp3", "a_2.mp3"}, got)
}
