// Package logging provides structured logging on top of log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "text",
//	    RedactPII: true,
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
// Packages that keep state log through slog.Default().With("component", ...),
// so installing the logger as the default is enough to configure them.
//
// # Run context
//
// WithRunID and WithSource store the run identity in a context; the
// *Context methods and WithContext add them to every entry.
//
// # Redaction
//
// With RedactPII, attribute values are passed through a Redactor before
// they reach the output handler:
//
//   - emails: jane@example.com becomes ***@***
//   - phone numbers: 555-123-4567 becomes ***-***-****
//   - any value under a key containing "email", "phone", "token" or "secret"
//     becomes ***
package logging
