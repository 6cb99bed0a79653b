// Package version хранит версию API сервера. Значение можно переопределить при сборке:
//
//	go build -ldflags "-X github.com/magabrotheeeer/book-club/internal/version.Version=v1.2.0"
package version

// Version — семантическая версия API.
var Version = "v1.0.0"
