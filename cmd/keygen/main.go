package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/rpay/imagegate/pkg/keygen"
)

// Mints privileged API keys for the API_KEYS allow-list.
func main() {
	count := flag.Int("n", 1, "number of keys to generate")
	flag.Parse()

	for i := 0; i < *count; i++ {
		key, err := keygen.GenerateAPIKey()
		if err != nil {
			log.Fatalf("Failed to generate key: %v", err)
		}
		fmt.Println(key)
	}
}
