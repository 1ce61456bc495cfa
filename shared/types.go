package shared

type ServerConfig struct {
	Sqlite Sqlite `mapstructure:"sqlite" validate:"required"`
	Jaga   Jaga   `mapstructure:"jaga" validate:"required"`
	Fcm    Fcm    `mapstructure:"fcm"`
	Twilio Twilio `mapstructure:"twilio"`
	Google Google `mapstructure:"google"`
}

type Sqlite struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type Jaga struct {
	PrivateKeyPem string     `mapstructure:"privateKeyPem" validate:"required"`
	Cron          Cron       `mapstructure:"cron" validate:"required"`
	Listener      Listener   `mapstructure:"listener" validate:"required"`
	Escalation    Escalation `mapstructure:"escalation"`
}

type Cron struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type Listener struct {
	Port int `mapstructure:"port" validate:"required"`
}

// Escalation tunes the incident state machine. DwellTimeInMillis is the
// window a user has to mark themself safe after notifying their contacts.
type Escalation struct {
	DwellTimeInMillis          int `mapstructure:"dwellTimeInMillis"`
	AbandonedIncidentAgeInMins int `mapstructure:"abandonedIncidentAgeInMins"`
}

type Fcm struct {
	ServerKey string `mapstructure:"serverKey"`
	Endpoint  string `mapstructure:"endpoint"`
}

type Twilio struct {
	AccountSid          string `mapstructure:"accountSid"`
	AuthToken           string `mapstructure:"authToken"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid"`
}

type Google struct {
	ApplicationCredentials string  `mapstructure:"applicationCredentials"`
	Storage                Storage `mapstructure:"storage"`
}

type Storage struct {
	Bucket                    string      `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string      `mapstructure:"prefix" validate:"required_with=EnableSqliteBackupAndSync"`
	SqliteBackupSchedule      string      `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync interface{} `mapstructure:"enableSqliteBackupAndSync" validate:"omitempty,bool"`
}
