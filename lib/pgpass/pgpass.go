package pgpass

import (
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgpassfile"
)

// Entry is one host:port:db:user:password credential line.
type Entry struct {
	Host     string
	Port     uint16
	Database string
	User     string
	Password string
}

func (T Entry) line() string {
	fields := []string{
		escapeField(T.Host),
		strconv.Itoa(int(T.Port)),
		escapeField(T.Database),
		escapeField(T.User),
		escapeField(T.Password),
	}
	return strings.Join(fields, ":")
}

// matches reports whether line already covers this entry's host:port:db:user.
// The stored password is ignored; an existing entry is never overwritten.
func (T Entry) matches(line string) bool {
	fields := splitFields(line)
	if len(fields) != 5 {
		return false
	}
	return fields[0] == T.Host &&
		fields[1] == strconv.Itoa(int(T.Port)) &&
		fields[2] == T.Database &&
		fields[3] == T.User
}

// Append adds entry to the password file at path, creating the file with
// 0600 permissions if needed. Appending is idempotent: if a line for the
// same host:port:db:user exists, the file is left untouched.
func Append(path string, entry Entry) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, line := range strings.Split(string(existing), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if entry.matches(line) {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	text := entry.line() + "\n"
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		text = "\n" + text
	}
	_, err = f.WriteString(text)
	return err
}

// Password looks up a password for host:port:db:user, honoring the file's
// wildcard rules.
func Password(path, host string, port uint16, database, user string) (string, bool) {
	passfile, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return "", false
	}
	password := passfile.FindPassword(host, strconv.Itoa(int(port)), database, user)
	return password, password != ""
}

// Default returns the standard password file path for the current user.
func Default() string {
	if path := os.Getenv("PGPASSFILE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.pgpass"
}

func escapeField(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, ":", `\:`)
}

// splitFields splits a passfile line on unescaped colons and unescapes the
// results.
func splitFields(line string) []string {
	var fields []string
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if i+1 < len(line) {
				i++
				b.WriteByte(line[i])
			}
		case ':':
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(line[i])
		}
	}
	fields = append(fields, b.String())
	return fields
}
