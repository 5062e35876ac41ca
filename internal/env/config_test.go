package env_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/luma/ola/internal/env"
)

var _ = Describe("env", func() {
	Describe("LoadConfig", func() {
		It("defaults to the local daemon", func() {
			conf, err := env.LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
			Expect(err).To(Succeed())

			Expect(conf.Host).To(Equal("localhost"))
			Expect(conf.Port).To(Equal(9010))
			Expect(conf.LogLevel).To(Equal("info"))
			Expect(conf.DebugHTTP).To(BeFalse())
			Expect(conf.Addr()).To(Equal("localhost:9010"))
		})

		It("reads the environment", func() {
			conf, err := env.LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
				"OLA_HOST":       "10.0.0.2",
				"OLA_PORT":       "9011",
				"OLA_LOG_LEVEL":  "debug",
				"OLA_DEBUG_HTTP": "true",
			}))
			Expect(err).To(Succeed())

			Expect(conf.Addr()).To(Equal("10.0.0.2:9011"))
			Expect(conf.LogLevel).To(Equal("debug"))
			Expect(conf.DebugHTTP).To(BeTrue())
		})

		It("rejects a malformed port", func() {
			_, err := env.LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
				"OLA_PORT": "ninety",
			}))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("MakeLogger", func() {
		It("uses the requested level", func() {
			log, err := env.MakeLogger("warn")
			Expect(err).To(Succeed())
			Expect(log.Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
			Expect(log.Core().Enabled(zapcore.WarnLevel)).To(BeTrue())
		})

		It("rejects unknown levels", func() {
			_, err := env.MakeLogger("loud")
			Expect(err).To(HaveOccurred())
		})
	})
})
