// shopfront-stub serves the in-memory backend stub for local development.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rafaelmeneses/shopfront/internal/stubserver"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "", "listen address (overrides STUB_ADDR)")
	flag.Parse()

	listen := *addr
	if listen == "" {
		listen = os.Getenv("STUB_ADDR")
	}
	if listen == "" {
		listen = ":8000"
	}

	srv := stubserver.New()
	log.Printf("stub backend running on %s", listen)
	log.Printf("accounts: admin@ecommerce.com/admin123, test@example.com/password")
	if err := http.ListenAndServe(listen, srv.Router()); err != nil {
		log.Fatal(err)
	}
}
