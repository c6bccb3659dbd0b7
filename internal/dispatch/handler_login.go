package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
)

// handleLogin checks HELO,name,password against the account store. On
// success the session is created with the account's stats; either way the
// client gets a system chat line, which is what the reference client
// expects.
func (d *Dispatcher) handleLogin(s *session.Session, cmd proto.Command) error {
	name, err := cmd.Field(0)
	if err != nil {
		return err
	}
	password, err := cmd.Field(1)
	if err != nil {
		return err
	}

	if !d.accounts.Exists(name) {
		d.caster.Singlecast(s.ConnID, proto.SystemChat("Login failed. Please try again."))
		return fmt.Errorf("no such account: %s", name)
	}

	acct, err := d.accounts.Load(name)
	if err != nil {
		d.caster.Singlecast(s.ConnID, proto.SystemChat("Login failed. Please try again."))
		return fmt.Errorf("loading account %s: %w", name, err)
	}
	if acct.Password != password {
		d.caster.Singlecast(s.ConnID, proto.SystemChat("Login failed. Please try again."))
		return fmt.Errorf("wrong password for account %s", name)
	}

	logged := &session.Session{
		ConnID:    s.ConnID,
		Name:      acct.Name,
		Stats:     acct.Stats,
		Inventory: item.NewInventory(),
	}
	d.sessions.Add(logged)

	d.caster.Singlecast(s.ConnID, proto.SystemChat("successful"))
	d.sendAllStats(logged)

	slog.Info("player logged in", "conn", s.ConnID, "name", acct.Name)
	return nil
}

// handleRegister creates a new account from REGI,name,password.
func (d *Dispatcher) handleRegister(s *session.Session, cmd proto.Command) error {
	name, err := cmd.Field(0)
	if err != nil {
		return err
	}
	password, err := cmd.Field(1)
	if err != nil {
		return err
	}

	if d.accounts.Exists(name) {
		d.caster.Singlecast(s.ConnID, proto.SystemChat("Account name is taken already."))
		return fmt.Errorf("account %s already exists", name)
	}

	if err := d.accounts.Register(name, password); err != nil {
		d.caster.Singlecast(s.ConnID, proto.SystemChat("Account creation failed: "+err.Error()))
		return fmt.Errorf("registering account %s: %w", name, err)
	}

	d.caster.Singlecast(s.ConnID, proto.SystemChat("successful"))
	slog.Info("account registered", "conn", s.ConnID, "name", name)
	return nil
}

func (d *Dispatcher) handleLogout(s *session.Session, cmd proto.Command) error {
	d.dropConnection(s.ConnID)
	return nil
}

// sendAllStats pushes the full stat block to the client in one STAT line.
func (d *Dispatcher) sendAllStats(s *session.Session) {
	var entries []proto.StatEntry
	for i, stat := range s.Stats {
		if stat == nil {
			continue
		}
		entries = append(entries, proto.StatEntry{
			Index: i, Min: stat.Min, Max: stat.Max, Value: stat.Value,
		})
	}
	if len(entries) > 0 {
		d.caster.Singlecast(s.ConnID, proto.Stats(entries))
	}
}
