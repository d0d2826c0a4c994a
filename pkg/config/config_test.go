package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvWalletURL, "")
		t.Setenv(EnvReturnMsg, "")
		e, err := LoadEnv()
		require.NoError(t, err)
		assert.False(t, e.ReturnMsg)
		assert.False(t, e.UseWallet())
		assert.Equal(t, ChainId_EthereumAnvil, e.ChainID)
		assert.Equal(t, JournalType_None, e.JournalType)
	})

	t.Run("wallet and return msg", func(t *testing.T) {
		t.Setenv(EnvWalletURL, "http://wallet.local:9100")
		t.Setenv(EnvReturnMsg, "true")
		e, err := LoadEnv()
		require.NoError(t, err)
		assert.True(t, e.ReturnMsg)
		assert.True(t, e.UseWallet())
	})

	t.Run("invalid return msg", func(t *testing.T) {
		t.Setenv(EnvReturnMsg, "maybe")
		_, err := LoadEnv()
		require.Error(t, err)
	})
}

func Test_EnvValidate(t *testing.T) {
	tests := []struct {
		name        string
		env         Env
		expectedErr string
	}{
		{
			name:        "missing portal url",
			env:         Env{ChainID: ChainId_EthereumAnvil, JournalType: JournalType_None},
			expectedErr: "portalUrl",
		},
		{
			name:        "unsupported chain",
			env:         Env{PortalURL: "http://localhost", ChainID: 42, JournalType: JournalType_None},
			expectedErr: "chainId",
		},
		{
			name:        "unknown journal",
			env:         Env{PortalURL: "http://localhost", ChainID: ChainId_EthereumAnvil, JournalType: "etcd"},
			expectedErr: "journalType",
		},
		{
			name:        "badger without path",
			env:         Env{PortalURL: "http://localhost", ChainID: ChainId_EthereumAnvil, JournalType: JournalType_Badger},
			expectedErr: "journalPath",
		},
		{
			name:        "sqlite without path",
			env:         Env{PortalURL: "http://localhost", ChainID: ChainId_EthereumAnvil, JournalType: JournalType_Sqlite},
			expectedErr: "journalPath",
		},
		{
			name:        "negative rate limit",
			env:         Env{PortalURL: "http://localhost", ChainID: ChainId_EthereumAnvil, JournalType: JournalType_None, HTTPRateLimit: -1},
			expectedErr: "httpRateLimit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func Test_RemoteSignerConfig(t *testing.T) {
	require.Error(t, (&RemoteSignerConfig{}).Validate())
	require.Error(t, (&RemoteSignerConfig{Url: "wallet-without-scheme"}).Validate())
	require.NoError(t, RemoteSignerConfigFromEnv(&Env{WalletURL: "http://w"}).Validate())
}

func Test_LoadRemoteSignerConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wallet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: http://wallet.local:9000
fromAddress: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
authToken: secret
`), 0o600))

	rsc, err := LoadRemoteSignerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://wallet.local:9000", rsc.Url)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", rsc.FromAddress)
	assert.Equal(t, "secret", rsc.AuthToken)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("authToken: x\n"), 0o600))
	_, err = LoadRemoteSignerConfig(empty)
	require.Error(t, err)

	badURL := filepath.Join(dir, "bad-url.yaml")
	require.NoError(t, os.WriteFile(badURL, []byte("url: not a url\n"), 0o600))
	_, err = LoadRemoteSignerConfig(badURL)
	require.Error(t, err)

	_, err = LoadRemoteSignerConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
