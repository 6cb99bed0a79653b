package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
)

// FileJar — cookie jar, который сохраняет cookie сервера в файл между
// запусками CLI. Хранятся только cookie одного сервера.
type FileJar struct {
	mu     sync.Mutex
	path   string
	server *url.URL
	jar    *cookiejar.Jar
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewFileJar создаёт jar для server и загружает ранее сохранённые cookie из path.
func NewFileJar(path string, server *url.URL) (*FileJar, error) {
	const op = "client.NewFileJar"

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	j := &FileJar{path: path, server: server, jar: jar}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return j, nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		// повреждённый файл равносилен отсутствию cookie
		return j, nil
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(server, cookies)
	return j, nil
}

// SetCookies реализует http.CookieJar и сохраняет актуальный набор cookie в файл.
func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
	_ = j.persist()
}

// Cookies реализует http.CookieJar.
func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// Clear удаляет все cookie сервера и файл.
func (j *FileJar) Clear() error {
	const op = "client.FileJar.Clear"

	j.mu.Lock()
	defer j.mu.Unlock()

	expired := make([]*http.Cookie, 0)
	for _, c := range j.jar.Cookies(j.server) {
		expired = append(expired, &http.Cookie{Name: c.Name, Path: "/", MaxAge: -1})
	}
	j.jar.SetCookies(j.server, expired)

	if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (j *FileJar) persist() error {
	cookies := j.jar.Cookies(j.server)
	if len(cookies) == 0 {
		if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return writeFileAtomic(j.path, data)
}
