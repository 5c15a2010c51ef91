package usmc

import "github.com/golang/glog"

// Logger is the logging capability injected at construction. The
// default implementation is glog backed; callers embedding the driver
// in another logging setup provide their own.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type glogLogger struct{}

func (glogLogger) Debugf(format string, args ...interface{}) {
	if glog.V(2) {
		glog.Infof(format, args...)
	}
}

func (glogLogger) Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

func (glogLogger) Errorf(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}
