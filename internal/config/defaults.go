package config

const (
	defaultConfigPath        = "~/.config/tunepull/config.toml"
	defaultOutputDir         = "~/Music/tunepull"
	defaultStateDir          = "~/.local/share/tunepull"
	defaultEnvFile           = "~/.config/tunepull/.env"
	defaultSpotifyTokenURL   = "https://accounts.spotify.com/api/token"
	defaultSpotifyAPIBaseURL = "https://api.spotify.com/v1/"
	defaultSpotifyTimeout    = 15
	defaultYtdlpBinary       = "yt-dlp"
	defaultSearchTimeout     = 30
	defaultFetchContainer    = "mp4"
	defaultFetchBitrateKbps  = 128
	defaultFetchTimeout      = 120
	defaultFFmpegBinary      = "ffmpeg"
	defaultOutputContainer   = "m4a"
	defaultAudioBitrate      = "192k"
	defaultTaggingTimeout    = 120
	defaultNaming            = NamingReadable
	defaultArchiveName       = "tunepull.zip"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Library naming styles.
const (
	NamingReadable = "readable"
	NamingSlug     = "slug"
)

// Output containers supported by the tagger.
const (
	ContainerM4A = "m4a"
	ContainerMP3 = "mp3"
)

// Environment variables consulted for Spotify credentials.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			EnvFile:   defaultEnvFile,
		},
		Spotify: Spotify{
			TokenURL:       defaultSpotifyTokenURL,
			APIBaseURL:     defaultSpotifyAPIBaseURL,
			RequestTimeout: defaultSpotifyTimeout,
		},
		Search: Search{
			YtdlpBinary: defaultYtdlpBinary,
			Timeout:     defaultSearchTimeout,
		},
		Fetch: Fetch{
			Container:      defaultFetchContainer,
			BitrateKbps:    defaultFetchBitrateKbps,
			RequestTimeout: defaultFetchTimeout,
		},
		Tagging: Tagging{
			FFmpegBinary:    defaultFFmpegBinary,
			OutputContainer: defaultOutputContainer,
			AudioBitrate:    defaultAudioBitrate,
			Timeout:         defaultTaggingTimeout,
		},
		Library: Library{
			Naming:      defaultNaming,
			ArchiveName: defaultArchiveName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
