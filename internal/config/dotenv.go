package config

import (
	"bufio"
	"os"
	"strings"
)

// LoadDotEnv applies the KEY=VALUE pairs of a .env file to the process
// environment. Variables that are already set win over the file, so the
// real environment always takes precedence over local defaults. A missing
// file is returned as-is for the caller to ignore.
func LoadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// parseEnvLine splits one .env line into a key/value pair. Blank lines,
// comments, and lines without '=' report ok=false. Surrounding quotes on
// the value are stripped.
func parseEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(k)
	value = strings.Trim(strings.TrimSpace(v), `"'`)
	return key, value, key != ""
}
