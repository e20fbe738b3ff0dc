package digits

import (
	"sync"

	jj "github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/text/language"
)

var userLocale struct {
	once sync.Once
	tag  language.Tag
}

// UserLocale returns the locale of the user, as detected from the
// environment. Clients (and tests) may replace it.
var UserLocale = detectUserLocale

func detectUserLocale() language.Tag {
	userLocale.once.Do(func() {
		loc, err := jj.DetectIETF()
		if err != nil {
			tracer().Infof("cannot detect user locale (%v), using en-US", err)
			loc = "en-US"
		}
		userLocale.tag = language.Make(loc)
		tracer().Debugf("digit substitution: user locale is %v", userLocale.tag)
	})
	return userLocale.tag
}
