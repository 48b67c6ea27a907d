// Package middleware groups the HTTP middleware of the lookup API.
//
//   - auth: checks the X-API-Key header against server.api_key.
//   - rayid: tags each request with a ray id, stored in fiber locals and
//     echoed in the X-Ray-ID response header.
//
// Register rayid first so every later log line carries the id.
package middleware
