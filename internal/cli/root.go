package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/tokumei/internal/api"
	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/daily"
	"github.com/julianstephens/tokumei/internal/identity"
	"github.com/julianstephens/tokumei/internal/models"
	"github.com/julianstephens/tokumei/internal/session"
	"github.com/julianstephens/tokumei/internal/storage"
	"github.com/julianstephens/tokumei/internal/utils"
	"github.com/julianstephens/tokumei/internal/validation"
)

// Context is handed to every command's Run method. The API client and the
// session are built lazily from the stored settings, so commands that only
// touch the local store never need the network.
type Context struct {
	Store storage.Provider

	// APIURL overrides the stored api_url when set.
	APIURL string
	// Timeout bounds each remote request; zero means no timeout.
	Timeout time.Duration
	// Clock overrides the daily tracker's time source.
	Clock utils.Clock
	// Out receives command output; nil means stdout.
	Out io.Writer

	Ctx context.Context

	client  *api.Client
	session *session.Session
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Writer exposes the output stream for renderers.
func (c *Context) Writer() io.Writer {
	return c.out()
}

// Context returns the command's context.Context.
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Settings returns the stored settings with command-line overrides applied.
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	if c.APIURL != "" {
		settings.APIURL = c.APIURL
	}
	if err := validation.Default().Validate(settings); err != nil {
		return models.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Location is the timezone that decides "today".
func (c *Context) Location() (*time.Location, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	return utils.LoadLocation(settings.Timezone)
}

// Client returns the API client for the configured service.
func (c *Context) Client() (*api.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	client, err := api.New(settings.APIURL,
		api.WithRateLimit(settings.RequestsPerSecond, constants.DefaultRequestBurst),
		api.WithTimeout(c.Timeout),
	)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

// Tracker returns a daily tracker in the configured timezone.
func (c *Context) Tracker() (*daily.Tracker, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	var opts []daily.Option
	if c.Clock != nil {
		opts = append(opts, daily.WithClock(c.Clock))
	}
	return daily.NewTracker(c.Store, loc, opts...), nil
}

// Session returns the shared session, building it on first use. It is not
// bootstrapped; call Start or Bootstrap.
func (c *Context) Session() (*session.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	tracker, err := c.Tracker()
	if err != nil {
		return nil, err
	}
	boot := identity.NewBootstrapper(identity.NewStore(settings.IdentityBackend, c.Store), client)
	c.session = session.New(client, boot, tracker)
	return c.session, nil
}

// Bootstrapped builds the session and resolves the identity. Commands that
// cannot work without an identity fail here.
func (c *Context) Bootstrapped() (*session.Session, string, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, "", err
	}
	userID, err := sess.Bootstrap(c.Context())
	if userID == "" {
		if err == nil {
			err = session.ErrNoIdentity
		}
		return nil, "", fmt.Errorf("could not obtain an identity: %w", err)
	}
	if err != nil {
		// identity issued but not persisted; usable for this run only
		c.Printf("Warning: %v\n", err)
	}
	return sess, userID, nil
}
