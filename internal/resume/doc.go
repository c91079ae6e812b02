// Package resume extracts plain text from uploaded résumé files (PDF, DOCX
// and UTF-8 text). Extraction never fails loudly: unreadable or very short
// documents yield an empty string and the caller decides what that means.
package resume
