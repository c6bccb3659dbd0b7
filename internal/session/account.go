package session

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const accountFileVersion = "v10"

// AccountStore reads and writes the per-player account files. Every player
// has one directory under the players root, holding a single ini file:
// version tag, display name, password, then one line per stat as
// "index,min,max,value".
type AccountStore struct {
	playersDir string
}

func NewAccountStore(playersDir string) *AccountStore {
	return &AccountStore{playersDir: playersDir}
}

// Account is the persisted state of one player.
type Account struct {
	Name     string
	Password string
	Stats    [StatCount]*Stat
}

func (a *AccountStore) accountPath(name string) string {
	lower := strings.ToLower(name)
	return filepath.Join(a.playersDir, lower, lower+".ini")
}

// Exists reports whether an account with the given name is registered.
func (a *AccountStore) Exists(name string) bool {
	_, err := os.Stat(a.accountPath(name))
	return err == nil
}

// Load reads an account file. Unknown stat indices are rejected; a file
// without stat lines yields an account with no stats set.
func (a *AccountStore) Load(name string) (*Account, error) {
	f, err := os.Open(a.accountPath(name))
	if err != nil {
		return nil, fmt.Errorf("opening account file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	header := make([]string, 0, 3)
	for len(header) < 3 && scanner.Scan() {
		header = append(header, strings.TrimRight(scanner.Text(), "\r"))
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("account %s: truncated file", name)
	}
	if header[0] != accountFileVersion {
		return nil, fmt.Errorf("account %s: unsupported version %q", name, header[0])
	}

	acct := &Account{Name: header[1], Password: header[2]}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx, stat, err := parseStat(line)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", name, err)
		}
		acct.Stats[idx] = stat
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("account %s: %w", name, err)
	}

	return acct, nil
}

func parseStat(line string) (int, *Stat, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return 0, nil, fmt.Errorf("stat line %q: expected 4 fields", line)
	}

	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, nil, fmt.Errorf("stat line %q: %w", line, err)
		}
		nums[i] = n
	}

	idx := nums[0]
	if idx < 0 || idx >= StatCount {
		return 0, nil, fmt.Errorf("stat line %q: index out of range", line)
	}
	return idx, &Stat{Min: nums[1], Max: nums[2], Value: nums[3]}, nil
}

// Save writes an account file, creating the player directory when needed.
func (a *AccountStore) Save(acct *Account) error {
	path := a.accountPath(acct.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating player directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n", accountFileVersion, acct.Name, acct.Password)
	for i, stat := range acct.Stats {
		if stat == nil {
			continue
		}
		fmt.Fprintf(&b, "%d,%d,%d,%d\n", i, stat.Min, stat.Max, stat.Value)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing account file: %w", err)
	}
	return nil
}

// Register creates a new account with the starting stats. Fails when the
// name is already taken.
func (a *AccountStore) Register(name, password string) error {
	if a.Exists(name) {
		return fmt.Errorf("account %s already exists", name)
	}

	acct := &Account{Name: name, Password: password}
	acct.Stats[StatLife] = &Stat{Min: 0, Max: 40, Value: 40}
	acct.Stats[StatMana] = &Stat{Min: 0, Max: 40, Value: 40}
	return a.Save(acct)
}
