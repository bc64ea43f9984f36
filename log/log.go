// Package log provides the loggers the audiograph runtime reports
// through at preparation time, and the field conventions its entries
// share: graphs log under "graph", nodes under "node" and "kind",
// buses under "bus". The processing path never logs.
package log

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var debug bool

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("AUDIOGRAPH_DEBUG"))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Graph returns an entry annotated with a graph identity.
func Graph(l *logrus.Logger, graph fmt.Stringer) *logrus.Entry {
	return l.WithField("graph", graph.String())
}

// Node returns an entry annotated with the concrete node kind and,
// when the node carries an id, with it.
func Node(l *logrus.Logger, node interface{}) *logrus.Entry {
	e := l.WithField("kind", fmt.Sprintf("%T", node))
	if n, ok := node.(interface{ ID() string }); ok {
		e = e.WithField("node", n.ID())
	}
	return e
}

// Bus returns an entry annotated with a bus id.
func Bus(l *logrus.Logger, id int) *logrus.Entry {
	return l.WithField("bus", id)
}
