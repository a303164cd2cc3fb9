package span

import "github.com/tliron/commonlog"

// log looks the logger up on use so that a backend linked by the program
// is picked up regardless of package initialization order.
func log() commonlog.Logger {
	return commonlog.GetLogger("srcspan.span")
}
