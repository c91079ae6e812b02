// Package mail delivers finished reports as HTML email over SMTP with
// implicit TLS, using github.com/wneessen/go-mail.
package mail
