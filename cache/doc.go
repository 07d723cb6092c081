// Package cache stores rendered health documents for a short TTL.
//
// The /status endpoint runs every probe; under scrape storms the service
// serves the last rendered document from a Cache instead. MemoryCache keeps
// the document per process, RedisCache shares it between replicas.
package cache
