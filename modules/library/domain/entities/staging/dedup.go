package staging

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DeduplicateKey assigns a collision-free storage key for a candidate
// filename given the keys already used in a session. The first attempt is
// the filename unchanged; on collision a numeric suffix is inserted before
// the extension ("name.mp3" -> "name_1.mp3" -> "name_2.mp3", ...).
// Deterministic and side-effect-free.
func DeduplicateKey(used map[string]struct{}, originalFilename string) string {
	if _, taken := used[originalFilename]; !taken {
		return originalFilename
	}
	ext := filepath.Ext(originalFilename)
	base := strings.TrimSuffix(originalFilename, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}
