package config

import (
	"os"
	"strconv"
)

// Port returns the listen port for the gateway.
func Port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "4000"
}

// MediaBaseURL is joined with the server-relative imageUrl values stored in
// script documents to form fully-qualified thumbnail URLs.
func MediaBaseURL() string {
	if u := os.Getenv("MEDIA_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:4000"
}

// TranscriberURL points at the transcription collaborator.
func TranscriberURL() string {
	if u := os.Getenv("TRANSCRIBER_URL"); u != "" {
		return u
	}
	return "http://localhost:4000"
}

// CacheCapacity bounds resident thumbnail cache entries.
func CacheCapacity() int {
	if v := os.Getenv("IMAGE_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 200
}
