package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
)

// ExtractedTextName is the object name of the cleaned resume text next to an upload.
const ExtractedTextName = "extracted.txt"

const maxFileNameRunes = 128

var errInvalidFileName = errors.New("invalid file name")

// AnalysisKey builds the storage key for a file that belongs to an analysis:
// analyses/<hashed user>/<analysis id>/<file>.
func AnalysisKey(userID, analysisID, fileName string) (string, error) {
	name, err := cleanFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	if analysisID == "" || strings.ContainsAny(analysisID, `/\`) || analysisID == "." || analysisID == ".." {
		return "", fmt.Errorf("invalid analysis id %q", analysisID)
	}
	return path.Join("analyses", ownerSegment(userID), analysisID, name), nil
}

// TextKey returns the key for the cleaned text stored next to key.
func TextKey(key string) string {
	return path.Join(path.Dir(key), ExtractedTextName)
}

// ownerSegment keeps raw user ids (emails, "guest:<uuid>") out of object paths.
func ownerSegment(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// cleanFileName flattens separators, drops control characters and caps the
// length while keeping the extension. Names containing ".." are rejected.
func cleanFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errInvalidFileName
	}
	if runes := []rune(out); len(runes) > maxFileNameRunes {
		ext := []rune(path.Ext(out))
		if len(ext) >= maxFileNameRunes {
			ext = nil
		}
		out = string(runes[:maxFileNameRunes-len(ext)]) + string(ext)
	}
	return out, nil
}
