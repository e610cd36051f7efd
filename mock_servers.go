package main

import (
	"fmt"
	"log"
	"net/http"

	"f1lapcompare/pkg/provider"
)

// CreateMockProvider serves synthetic sessions on port and returns its base URL.
func CreateMockProvider(port int) string {
	go func() {
		log.Printf("Starting mock provider in port %d\n", port)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), provider.NewMockHandler()); err != nil {
			log.Println(err)
		}
	}()
	return fmt.Sprintf("http://localhost:%d", port)
}
