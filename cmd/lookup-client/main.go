// lookup-client resolves a batch of identifiers against an HTTP lookup
// service with a bounded number of concurrent requests.
//
// Every distinct identifier is requested once; duplicates are answered from
// the same result. Identifiers rejected with 429 are retried. One payload per
// identifier is printed to stdout in identifier order:
//
//	{"id":"<id>","timestamp":<ns>,"status":<code>,"response":<body or null>}
//
// Usage:
//
//	# 100 generated identifiers, 5 concurrent requests
//	lookup-client -Url http://localhost/items/ -Port 8080 -Authorization TOKEN
//
//	# Positional values fill url, port, authorization, requests, limit
//	lookup-client http://localhost/items/ 3000 TOKEN 50 5
//
//	# Identifiers from a file, exported to Redis, metrics on :9090
//	lookup-client -u http://localhost/items/ --input ids.txt \
//	    --redis-addr localhost:6379 --metrics-addr :9090
package main

func main() {
	Execute()
}
