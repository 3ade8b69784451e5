package config_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/statusboard/config"
)

const validConfig = `
server:
  address: ":9090"
  environment: "prod"

logging:
  level: "debug"

status:
  base_url: "http://192.168.10.200:5000/"
  timeout: "3s"

poller:
  interval: "10s"

services:
  - name: "database"
    display_name: "Database"
  - name: "cache"
`

var _ = Describe("Config", func() {
	var (
		tempDir    string
		configPath string
	)

	writeConfig := func(content string) {
		configPath = filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(configPath, []byte(content), 0644)).To(Succeed())
	}

	loadFrom := func(args ...string) (*config.Config, error) {
		fs := config.Flags()
		Expect(fs.Parse(args)).To(Succeed())
		loader, err := config.NewLoader(fs)
		Expect(err).NotTo(HaveOccurred())
		return loader.Load()
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
		os.Unsetenv("POLLER_INTERVAL")
	})

	Describe("Load", func() {
		Context("with valid config file", func() {
			BeforeEach(func() {
				writeConfig(validConfig)
			})

			It("should load configuration successfully", func() {
				cfg, err := loadFrom("--config", configPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
				Expect(cfg.Server.Address).To(Equal(":9090"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvProd))
			})

			It("should parse the services in order", func() {
				cfg, _ := loadFrom("--config", configPath)
				Expect(cfg.Services).To(Equal([]config.ServiceConfig{
					{Name: "database", DisplayName: "Database"},
					{Name: "cache"},
				}))
			})

			It("should parse durations", func() {
				cfg, _ := loadFrom("--config", configPath)
				Expect(cfg.PollInterval()).To(Equal(10 * time.Second))
				Expect(cfg.StatusTimeout()).To(Equal(3 * time.Second))
			})

			It("should join the status URL", func() {
				cfg, _ := loadFrom("--config", configPath)
				Expect(cfg.StatusURL()).To(Equal("http://192.168.10.200:5000/api/check-connectivity"))
			})

			It("should let flags override the file", func() {
				cfg, err := loadFrom("--config", configPath, "--interval", "45s", "--address", "127.0.0.1:7000")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.PollInterval()).To(Equal(45 * time.Second))
				Expect(cfg.Server.Address).To(Equal("127.0.0.1:7000"))
			})

			It("should let environment variables override the file", func() {
				os.Setenv("POLLER_INTERVAL", "1m")
				cfg, err := loadFrom("--config", configPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.PollInterval()).To(Equal(time.Minute))
			})
		})

		Context("without a config file", func() {
			BeforeEach(func() {
				Expect(os.Chdir(tempDir)).To(Succeed())
			})

			It("should use defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.PollInterval()).To(Equal(30 * time.Second))
				Expect(cfg.StatusTimeout()).To(BeZero())
				Expect(cfg.Status.Path).To(Equal(config.DefaultStatusPath))
				Expect(cfg.Services).To(HaveLen(7))
				Expect(cfg.Services[0].Name).To(Equal("Navigation"))
			})
		})

		Context("with invalid config file", func() {
			It("should reject duplicate service names", func() {
				writeConfig(`
services:
  - name: "database"
  - name: "database"
`)
				_, err := loadFrom("--config", configPath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("unique"))
			})

			It("should reject a non-http status URL", func() {
				writeConfig(`
status:
  base_url: "ftp://example.com"
`)
				_, err := loadFrom("--config", configPath)
				Expect(err).To(HaveOccurred())
			})

			It("should reject a zero interval", func() {
				writeConfig(`
poller:
  interval: "0s"
`)
				_, err := loadFrom("--config", configPath)
				Expect(err).To(HaveOccurred())
			})

			It("should reject malformed YAML", func() {
				writeConfig("server: [unclosed")
				_, err := loadFrom("--config", configPath)
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				Server:   config.ServerConfig{Address: ":8080", Environment: config.EnvDev},
				Logging:  config.LoggingConfig{Level: config.LogLevelInfo},
				Status:   config.StatusConfig{BaseURL: "http://localhost:8000", Path: "/api/check-connectivity", Timeout: "0s"},
				Poller:   config.PollerConfig{Interval: "30s"},
				Refresh:  config.RefreshConfig{Rate: 1, Burst: 5},
				Services: []config.ServiceConfig{{Name: "database"}},
			}
		})

		It("should accept a complete config", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should require at least one service", func() {
			cfg.Services = nil
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject service names that break the page markup", func() {
			cfg.Services = []config.ServiceConfig{{Name: `db"x`}}
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an unknown environment", func() {
			cfg.Server.Environment = "qa"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a path without a leading slash", func() {
			cfg.Status.Path = "api/check-connectivity"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a negative timeout", func() {
			cfg.Status.Timeout = "-1s"
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})

	Describe("Watch", func() {
		var log *slog.Logger

		BeforeEach(func() {
			log = slog.New(slog.NewTextHandler(io.Discard, nil))
		})

		It("should report false when no file was loaded", func() {
			Expect(os.Chdir(tempDir)).To(Succeed())
			loader, err := config.NewLoader(nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = loader.Load()
			Expect(err).NotTo(HaveOccurred())

			Expect(loader.Watch(log, func(*config.Config) {})).To(BeFalse())
		})

		It("should deliver reloaded services", func() {
			writeConfig(validConfig)
			fs := config.Flags()
			Expect(fs.Parse([]string{"--config", configPath})).To(Succeed())
			loader, err := config.NewLoader(fs)
			Expect(err).NotTo(HaveOccurred())
			_, err = loader.Load()
			Expect(err).NotTo(HaveOccurred())

			changes := make(chan *config.Config, 4)
			Expect(loader.Watch(log, func(c *config.Config) {
				select {
				case changes <- c:
				default:
				}
			})).To(BeTrue())

			writeConfig(`
services:
  - name: "queue"
`)

			var reloaded *config.Config
			Eventually(changes, 5*time.Second).Should(Receive(&reloaded))
			Expect(reloaded.Services).To(Equal([]config.ServiceConfig{{Name: "queue"}}))
		})
	})
})
