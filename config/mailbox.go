package config

import "fmt"

// Account defines the available options for a IMAP mailbox to pull tasks from
type Account struct {
	Name          string
	Server        string
	Port          int
	Username      string
	Password      string
	UseTLS        bool   `yaml:"use_tls"`
	UseStartTLS   bool   `yaml:"use_starttls"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Folder        string
}

// UnmarshalYAML applies the account defaults before decoding
func (a *Account) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Account
	p := plain{
		UseTLS: true,
		Folder: "INBOX",
	}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*a = Account(p)
	return nil
}

// String returns the name used for the account in logs
func (a Account) String() string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("%s@%s", a.Username, a.Server)
}

// SMTP defines the outgoing server used to send tasks
type SMTP struct {
	Server        string
	Port          int
	Username      string
	Password      string
	From          string
	UseTLS        bool `yaml:"use_tls"`
	UseStartTLS   bool `yaml:"use_starttls"`
	SkipTLSVerify bool `yaml:"skip_tls_verify"`
}

// UnmarshalYAML applies the SMTP defaults before decoding
func (s *SMTP) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain SMTP
	p := plain{UseTLS: true}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*s = SMTP(p)
	return nil
}

// Sender returns the address tasks are sent from
func (s SMTP) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}
