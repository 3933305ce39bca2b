package utils

import (
	"fmt"
	"strings"
)

// BuildMediaURL Base URL for stored media files
func BuildMediaURL(baseURL, filename string) string {
	return fmt.Sprintf("%s/media/%s", strings.TrimSuffix(baseURL, "/"), filename)
}
