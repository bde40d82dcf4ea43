package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

type EchoServer struct {
	Debug           bool
	ListenAddress   string
	EnableRecover   bool
	EnableRequestID bool
	EnableLogger    bool
	EnableMetrics   bool
}

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	PrettyPrintConsole bool
}

type RPC struct {
	URLTemplate string
	Timeout     time.Duration
}

type Wallet struct {
	URLTemplate string
	AppName     string
	// CallbackURL 钱包签名完成后的回跳地址，为空时不回跳
	CallbackURL string
	// OpenBrowser 是否在本机浏览器中打开钱包链接
	OpenBrowser bool
}

type Indexer struct {
	Mainnet IndexerEndpoint
	Testnet IndexerEndpoint
	Timeout time.Duration
}

type SecretStore struct {
	Backend     string // file, redis, memory
	FilePath    string
	Passphrase  string
	RedisAddr   string
	RedisPrefix string
}

type Social struct {
	MainnetContract string
	TestnetContract string
	GrantMethod     string
	// GrantDeposit yocto 字符串，原样写入交易
	GrantDeposit string
}

type Chain struct {
	DefaultGas uint64
}

type Server struct {
	Network     Network
	Echo        EchoServer
	Logger      LoggerServer
	RPC         RPC
	Wallet      Wallet
	Indexer     Indexer
	SecretStore SecretStore
	Social      Social
	Chain       Chain
}

const (
	SecretBackendFile   = "file"
	SecretBackendRedis  = "redis"
	SecretBackendMemory = "memory"
)

// RPCURL 返回网络对应的 JSON-RPC 地址
func (s Server) RPCURL(network Network) string {
	return fmt.Sprintf(s.RPC.URLTemplate, network.OrDefault())
}

// WalletURL 返回网络对应的外部钱包根地址
func (s Server) WalletURL(network Network) string {
	return fmt.Sprintf(s.Wallet.URLTemplate, network.OrDefault())
}

// SocialContract 返回网络对应的 SocialDB 合约
func (s Server) SocialContract(network Network) string {
	if network == NetworkTestnet {
		return s.Social.TestnetContract
	}
	return s.Social.MainnetContract
}

// IndexerEndpoint 返回网络对应的只读索引库
func (s Server) IndexerEndpoint(network Network) IndexerEndpoint {
	if network == NetworkTestnet {
		return s.Indexer.Testnet
	}
	return s.Indexer.Mainnet
}

// DefaultServiceConfigFromEnv returns the client configuration as specified by the environment variables.
// An `.env.local` file in the project root can override the currently set ENV variables.
func DefaultServiceConfigFromEnv() Server {
	if !util.RunningInTest() {
		DotEnvTryLoad(filepath.Join(util.GetProjectRootDir(), ".env.local"), os.Setenv)
	}

	network, err := ParseNetwork(util.GetEnv("NEARAUTH_NETWORK", string(DefaultNetwork)))
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to default network")
		network = DefaultNetwork
	}

	return Server{
		Network: network,
		Echo: EchoServer{
			Debug:           util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			ListenAddress:   util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", "127.0.0.1:8731"),
			EnableRecover:   util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestID: util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableLogger:    util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
			EnableMetrics:   util.GetEnvAsBool("SERVER_ECHO_ENABLE_METRICS_MIDDLEWARE", true),
		},
		Logger: LoggerServer{
			Level:              util.LogLevelFromString(util.GetEnv("SERVER_LOGGER_LEVEL", zerolog.InfoLevel.String())),
			RequestLevel:       util.LogLevelFromString(util.GetEnv("SERVER_LOGGER_REQUEST_LEVEL", zerolog.DebugLevel.String())),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		RPC: RPC{
			URLTemplate: util.GetEnv("NEARAUTH_RPC_URL_TEMPLATE", "https://rpc.%s.near.org"),
			Timeout:     time.Second * time.Duration(util.GetEnvAsInt("NEARAUTH_RPC_TIMEOUT_SEC", 30)),
		},
		Wallet: Wallet{
			URLTemplate: util.GetEnv("NEARAUTH_WALLET_URL_TEMPLATE", "https://wallet.%s.near.org"),
			AppName:     util.GetEnv("NEARAUTH_APP_NAME", "Ext"),
			CallbackURL: util.GetEnv("NEARAUTH_WALLET_CALLBACK_URL", ""),
			OpenBrowser: util.GetEnvAsBool("NEARAUTH_OPEN_BROWSER", false),
		},
		Indexer: Indexer{
			Mainnet: IndexerEndpoint{
				Host:     util.GetEnv("NEARAUTH_INDEXER_MAINNET_HOST", "mainnet.db.explorer.indexer.near.dev"),
				Port:     util.GetEnvAsInt("NEARAUTH_INDEXER_MAINNET_PORT", 5432),
				Database: util.GetEnv("NEARAUTH_INDEXER_MAINNET_DATABASE", "mainnet_explorer"),
				User:     util.GetEnv("NEARAUTH_INDEXER_MAINNET_USER", "public_readonly"),
				Password: util.GetEnv("NEARAUTH_INDEXER_MAINNET_PASSWORD", "nearprotocol"),
				SSLMode:  util.GetEnv("NEARAUTH_INDEXER_MAINNET_SSLMODE", "disable"),
			},
			Testnet: IndexerEndpoint{
				Host:     util.GetEnv("NEARAUTH_INDEXER_TESTNET_HOST", "testnet.db.explorer.indexer.near.dev"),
				Port:     util.GetEnvAsInt("NEARAUTH_INDEXER_TESTNET_PORT", 5432),
				Database: util.GetEnv("NEARAUTH_INDEXER_TESTNET_DATABASE", "testnet_explorer"),
				User:     util.GetEnv("NEARAUTH_INDEXER_TESTNET_USER", "public_readonly"),
				Password: util.GetEnv("NEARAUTH_INDEXER_TESTNET_PASSWORD", "nearprotocol"),
				SSLMode:  util.GetEnv("NEARAUTH_INDEXER_TESTNET_SSLMODE", "disable"),
			},
			Timeout: time.Second * time.Duration(util.GetEnvAsInt("NEARAUTH_INDEXER_TIMEOUT_SEC", 15)),
		},
		SecretStore: SecretStore{
			Backend: util.GetEnvEnum("NEARAUTH_SECRET_BACKEND", SecretBackendFile,
				[]string{SecretBackendFile, SecretBackendRedis, SecretBackendMemory}),
			FilePath:    util.ExpandHome(util.GetEnv("NEARAUTH_SECRET_FILE", "~/.near-auth/secrets.enc")),
			Passphrase:  util.GetEnv("NEARAUTH_SECRET_PASSPHRASE", ""),
			RedisAddr:   util.GetEnv("NEARAUTH_REDIS_ADDR", "127.0.0.1:6379"),
			RedisPrefix: util.GetEnv("NEARAUTH_REDIS_PREFIX", "near-auth:"),
		},
		Social: Social{
			MainnetContract: util.GetEnv("NEARAUTH_SOCIAL_CONTRACT_MAINNET", "social.near"),
			TestnetContract: util.GetEnv("NEARAUTH_SOCIAL_CONTRACT_TESTNET", "v1.social08.testnet"),
			GrantMethod:     util.GetEnv("NEARAUTH_SOCIAL_GRANT_METHOD", "grant_write_permission"),
			GrantDeposit:    util.GetEnv("NEARAUTH_SOCIAL_GRANT_DEPOSIT", "1"),
		},
		Chain: Chain{
			DefaultGas: util.GetEnvAsUint64("NEARAUTH_DEFAULT_GAS", 30_000_000_000_000),
		},
	}
}

// DotEnvTryLoad forcefully overrides ENV variables through **a maybe available** .env file.
func DotEnvTryLoad(absolutePathToEnvFile string, setEnvFn func(key string, value string) error) {
	err := DotEnvLoad(absolutePathToEnvFile, setEnvFn)

	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("envFile", absolutePathToEnvFile).Msg(".env parse error!")
		}
		return
	}

	log.Warn().Str("envFile", absolutePathToEnvFile).Msg(".env overrides ENV variables!")
}

// DotEnvLoad forcefully overrides ENV variables through the supplied .env file.
func DotEnvLoad(absolutePathToEnvFile string, setEnvFn func(key string, value string) error) error {
	file, err := os.Open(absolutePathToEnvFile)
	if err != nil {
		return err
	}
	defer file.Close()

	envs, err := gotenv.StrictParse(file)
	if err != nil {
		return err
	}

	for key, value := range envs {
		if err := setEnvFn(key, value); err != nil {
			return err
		}
	}

	return nil
}
