// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the practice service, translating HTTP concerns to session commands
// and stripping answer keys out of everything that reaches the learner.
package api
