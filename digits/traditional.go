package digits

import (
	"golang.org/x/text/language"
)

var (
	scriptArab = language.MustParseScript("Arab")
	scriptDeva = language.MustParseScript("Deva")
	scriptMong = language.MustParseScript("Mong")
)

// Digit zero of scripts with their own decimal digits.
const (
	zeroArabic         rune = 0x0660
	zeroExtendedArabic rune = 0x06F0
	zeroDevanagari     rune = 0x0966
	zeroMongolian      rune = 0x1810
)

// scriptZero maps ISO 15924 script codes to the first digit of the script.
var scriptZero = map[string]rune{
	"Arab": zeroArabic,
	"Nkoo": 0x07C0,
	"Deva": zeroDevanagari,
	"Beng": 0x09E6,
	"Guru": 0x0A66,
	"Gujr": 0x0AE6,
	"Orya": 0x0B66,
	"Taml": 0x0BE6,
	"Telu": 0x0C66,
	"Knda": 0x0CE6,
	"Mlym": 0x0D66,
	"Thai": 0x0E50,
	"Laoo": 0x0ED0,
	"Tibt": 0x0F20,
	"Mymr": 0x1040,
	"Khmr": 0x17E0,
	"Mong": zeroMongolian,
}

// Languages written in Arabic script which use the extended Arabic-Indic
// digits.
var extendedArabic = map[string]bool{
	"fa": true, "ur": true, "ps": true, "sd": true, "ks": true,
}

// numberingSystems maps CLDR numbering system identifiers (as used in the
// "-u-nu-" extension of BCP 47 tags) to digit zero.
var numberingSystems = map[string]rune{
	"latn":     '0',
	"arab":     zeroArabic,
	"arabext":  zeroExtendedArabic,
	"nkoo":     0x07C0,
	"deva":     zeroDevanagari,
	"beng":     0x09E6,
	"guru":     0x0A66,
	"gujr":     0x0AE6,
	"orya":     0x0B66,
	"tamldec":  0x0BE6,
	"telu":     0x0C66,
	"knda":     0x0CE6,
	"mlym":     0x0D66,
	"thai":     0x0E50,
	"laoo":     0x0ED0,
	"tibt":     0x0F20,
	"mymr":     0x1040,
	"khmr":     0x17E0,
	"mong":     zeroMongolian,
	"fullwide": 0xFF10,
}

// TraditionalFor returns the culture with the traditional digits for a
// locale. Some languages are written in more than one script and need
// special treatment.
func TraditionalFor(tag language.Tag) Culture {
	base, _ := tag.Base()
	script, _ := tag.Script()
	region, _ := tag.Region()
	lang := base.String()
	switch lang {
	case "pa": // Punjabi: Gurmukhi in India, Shahmukhi (Arabic) in Pakistan
		if script == scriptArab || region.String() == "PK" {
			return Culture{Tag: tag, Zero: zeroExtendedArabic}
		}
	case "mn": // Mongolian: only the traditional script has its own digits
		if script != scriptMong {
			return None
		}
	case "sd", "ks": // Sindhi, Kashmiri: Devanagari or Arabic script
		if script == scriptDeva {
			return Culture{Tag: tag, Zero: zeroDevanagari}
		}
		return Culture{Tag: tag, Zero: zeroExtendedArabic}
	}
	if script == scriptArab && extendedArabic[lang] {
		return Culture{Tag: tag, Zero: zeroExtendedArabic}
	}
	if z, ok := scriptZero[script.String()]; ok {
		return Culture{Tag: tag, Zero: z}
	}
	return None
}

// Native returns the culture with the national digits of a locale. These
// are given by the "nu" extension of the tag, if present. Otherwise they
// are the traditional digits, except for Arabic as used in the Maghreb,
// where European digits are in use.
func Native(tag language.Tag) Culture {
	if tag.TypeForKey("nu") != "" {
		return nativeFromExtension(tag)
	}
	base, _ := tag.Base()
	if region, _ := tag.Region(); base.String() == "ar" {
		switch region.String() {
		case "MA", "DZ", "TN", "LY", "EH":
			return None
		}
	}
	return TraditionalFor(tag)
}

func nativeFromExtension(tag language.Tag) Culture {
	nu := tag.TypeForKey("nu")
	if nu == "" {
		return None
	}
	z, ok := numberingSystems[nu]
	if !ok || z == '0' {
		return None
	}
	return Culture{Tag: tag, Zero: z}
}
