// Package version хранит сведения о сборке, проставляемые через -ldflags.
package version

import "fmt"

const serviceName = "restaurant-orders"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

func GetVersion() string { return version }

func GetCommit() string { return commit }

func GetDate() string { return date }

func String() string {
	return fmt.Sprintf("%s version=%s commit=%s date=%s", serviceName, version, commit, date)
}

// UserAgent: значение заголовка User-Agent для исходящих запросов.
func UserAgent() string {
	return serviceName + "/" + version
}
