package mockapi

import (
	"strings"
)

// splitText splits text into word chunks of roughly chunkSize bytes, carrying
// overlapPercent of each chunk's words into the next one
func splitText(text string, chunkSize, overlapPercent int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	current := []string{}
	size := 0

	for _, word := range words {
		wordSize := len(word) + 1 // +1 for space
		if size+wordSize > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			overlap := len(current) * overlapPercent / 100
			if overlap > 0 && overlap < len(current) {
				current = append([]string{}, current[len(current)-overlap:]...)
				size = len(strings.Join(current, " "))
			} else {
				current = []string{}
				size = 0
			}
		}
		current = append(current, word)
		size += wordSize
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
