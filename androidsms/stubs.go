package androidsms

import "context"

// notImplemented is the parser for formats that are detected and reported but
// not read yet. It produces no messages.
func notImplemented(_ context.Context, src *Source, _ RecordSink) (Stats, error) {
	src.logger().Warn("parser not implemented yet")
	return Stats{}, nil
}

// extractFirst returns a parser for archive containers, which must be
// unpacked with an external tool before their contents can be scanned.
func extractFirst(tool string) ParserFunc {
	return func(_ context.Context, src *Source, _ RecordSink) (Stats, error) {
		src.logger().Warn("archive must be unpacked first, please extract with " + tool + " or a similar tool")
		return Stats{}, nil
	}
}
