package storage_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/ola/storage"
)

var _ = Describe("storage / InmemoryStore", func() {
	var (
		ctx   context.Context
		store *storage.InmemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = storage.NewInmemoryStore()
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("Close()", func() {
		It("does not panic when closed twice", func() {
			Expect(func() { store.Close() }).NotTo(Panic())
			Expect(func() { store.Close() }).NotTo(Panic())
		})

		It("closes update channels", func() {
			updateChan := store.ListenToUpdates()
			Expect(store.Close()).To(Succeed())
			Eventually(updateChan).Should(BeClosed())
		})
	})

	It("an empty inmemory store equals {}", func() {
		value, err := store.Backup()
		Expect(err).To(Succeed())
		Expect(string(value)).To(Equal(`{}`))
	})

	Describe("Set() / Get()", func() {
		It("can read a key that is written", func() {
			Expect(store.Set(ctx, "foo", "bar")).To(Succeed())

			Expect(store.Get(ctx, "foo")).To(Equal([]byte(`"bar"`)))

			value, err := store.Backup()
			Expect(err).To(Succeed())
			Expect(string(value)).To(Equal(`{"foo":"bar"}`))
		})

		It("returns ErrNotFound for missing keys", func() {
			_, err := store.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.ErrNotFound))
		})

		It("writes nested paths", func() {
			Expect(store.Set(ctx, storage.DmxKey(3), []int{1, 2})).To(Succeed())

			value, err := store.Backup()
			Expect(err).To(Succeed())
			Expect(string(value)).To(Equal(`{"universes":{"u3":{"dmx":[1,2]}}}`))
		})

		It("sends on the update channel when values are set", func() {
			updateChan := store.ListenToUpdates()
			Expect(store.Set(ctx, "foo", "bar")).To(Succeed())

			update, ok := <-updateChan
			Expect(ok).To(BeTrue())
			Expect(update).To(Equal(&storage.Update{
				Key:   "foo",
				Value: []byte(`"bar"`),
			}))
		})
	})

	Describe("Delete()", func() {
		It("removes the key", func() {
			Expect(store.Set(ctx, "a.b", 1)).To(Succeed())
			Expect(store.Delete(ctx, "a.b")).To(Succeed())

			_, err := store.Get(ctx, "a.b")
			Expect(err).To(MatchError(storage.ErrNotFound))
		})
	})

	Describe("Restore()", func() {
		It("replaces the document", func() {
			Expect(store.Restore([]byte(`{"foo":1}`))).To(Succeed())
			Expect(store.Get(ctx, "foo")).To(Equal([]byte(`1`)))
		})

		It("rejects invalid JSON", func() {
			Expect(store.Restore([]byte(`{"foo":`))).NotTo(Succeed())
		})
	})

	Describe("Seed()", func() {
		It("writes a plugin, a device and a universe", func() {
			Expect(storage.Seed(ctx, store)).To(Succeed())

			plugin, found, err := storage.Lookup(ctx, store, storage.PluginKey(1))
			Expect(err).To(Succeed())
			Expect(found).To(BeTrue())
			Expect(storage.ParsePlugin(plugin).Name).To(Equal("Dummy"))

			device, found, err := storage.Lookup(ctx, store, storage.DeviceKey(1))
			Expect(err).To(Succeed())
			Expect(found).To(BeTrue())

			d := storage.ParseDevice(device)
			Expect(d.ID).To(Equal("1-1"))
			Expect(d.InputPorts).To(BeEmpty())
			Expect(d.OutputPorts).To(HaveLen(1))
			Expect(d.OutputPorts[0].Universe).To(Equal(1))

			universe, found, err := storage.Lookup(ctx, store, storage.UniverseKey(1))
			Expect(err).To(Succeed())
			Expect(found).To(BeTrue())

			u := storage.ParseUniverse(universe)
			Expect(u.MergeMode).To(Equal("HTP"))
			Expect(u.UIDs).To(ConsistOf("7A70:00000001", "7A70:00000002"))
		})
	})
})

var _ = Describe("storage / keys", func() {
	It("round trips DMX keys", func() {
		universe, ok := storage.ParseDmxKey(storage.DmxKey(12))
		Expect(ok).To(BeTrue())
		Expect(universe).To(Equal(12))
	})

	It("ignores other keys", func() {
		for _, key := range []string{"universes.u1.name", "plugins.p1", "universes.ux.dmx"} {
			_, ok := storage.ParseDmxKey(key)
			Expect(ok).To(BeFalse(), key)
		}
	})

	It("strips the colon from responder UIDs", func() {
		Expect(storage.ResponderKey(1, "7A70:00000001")).To(Equal("universes.u1.rdm.7A7000000001"))
	})
})
