package refine

// Built-in tag kinds. Use these in struct tags: `refine:"trim,no-digits"`.
const (
	// TagTrim strips surrounding whitespace.
	TagTrim TagKind = "trim"

	// TagLowercase folds to lower case.
	TagLowercase TagKind = "lowercase"

	// TagUppercase folds to upper case.
	TagUppercase TagKind = "uppercase"

	// TagCapitalize upper-cases the first letter and leaves the rest.
	TagCapitalize TagKind = "capitalize"

	// TagNormalizeName composes, collapses whitespace and title-cases each word.
	TagNormalizeName TagKind = "normalize-name"

	// TagHash replaces the value with a one-way hash. Arg: HashAlgo.
	TagHash TagKind = "hash"

	// TagMask masks the value by content type. Arg: MaskType.
	TagMask TagKind = "mask"

	// TagRedact replaces the value. Arg: replacement, default "***".
	TagRedact TagKind = "redact"

	// TagNoDigits rejects values containing a forbidden character.
	// Arg: forbidden characters, default any decimal digit.
	TagNoDigits TagKind = "no-digits"

	// TagNotBlank rejects empty or whitespace-only values.
	TagNotBlank TagKind = "not-blank"

	// TagMinLength rejects values shorter than Arg runes.
	TagMinLength TagKind = "min-length"

	// TagMaxLength rejects values longer than Arg runes.
	TagMaxLength TagKind = "max-length"

	// TagPattern rejects values not matching the Arg regular expression.
	TagPattern TagKind = "pattern"

	// TagRule delegates to a go-playground validator tag. Arg: the rule.
	TagRule TagKind = "rule"

	// TagEncrypt and TagDecrypt are not built in; register Encrypting and
	// Decrypting with a key.
	TagEncrypt TagKind = "encrypt"
	TagDecrypt TagKind = "decrypt"
)

// HashAlgo represents a supported hashing algorithm.
// Use these constants as the hash argument: `refine:"hash=argon2"`
type HashAlgo string

const (
	// HashArgon2 uses Argon2id for password hashing (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt for password hashing (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"

	// HashSHA256 uses SHA-256 for deterministic hashing (fast, no salt).
	// Use for fingerprinting/identification, NOT for passwords.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512 for deterministic hashing (fast, no salt).
	HashSHA512 HashAlgo = "sha512"
)

// builtinKinds lists the kinds registered by Builtins, in documentation order.
var builtinKinds = []TagKind{
	TagTrim, TagLowercase, TagUppercase, TagCapitalize, TagNormalizeName,
	TagHash, TagMask, TagRedact,
	TagNoDigits, TagNotBlank, TagMinLength, TagMaxLength, TagPattern, TagRule,
}

// IsBuiltinTag returns true if kind is registered by Builtins.
func IsBuiltinTag(kind TagKind) bool {
	for _, k := range builtinKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	_, ok := builtinHashers()[algo]
	return ok
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	_, ok := builtinMaskers()[mt]
	return ok
}
