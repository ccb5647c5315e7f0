package util

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// DetectMimeType sniffs the content type from the first 512 bytes and checks it
// against allowedTypes (full types or prefixes such as "text/").
func DetectMimeType(head []byte, allowedTypes []string) (string, error) {
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := http.DetectContentType(head)

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, nil
		}
	}

	return mimeType, fmt.Errorf("%w: detected %s", ErrInvalidDocument, mimeType)
}

// ExtensionFor picks the stored file extension for a sniffed document type.
func ExtensionFor(mimeType, filename string) string {
	switch {
	case strings.HasPrefix(mimeType, MimePDF):
		return ".pdf"
	case strings.HasPrefix(mimeType, MimePlainText):
		return ".txt"
	}
	return strings.ToLower(filepath.Ext(filename))
}
