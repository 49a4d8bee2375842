package db

import "testing"

func TestDBConfigFromYamlObj(t *testing.T) {
	t.Run("complete config", func(t *testing.T) {
		conf := DBConfigFromYamlObj(DBConfigYaml{
			ConnectionStr:      "localhost:27017",
			Username:           "user",
			Password:           "pw",
			ConnectionPrefix:   "+srv",
			Timeout:            30,
			MaxPoolSize:        8,
			DBNamePrefix:       "test_",
			RunIndexCreation:   true,
			UseNoCursorTimeout: true,
		}, []string{"inst1"})

		if conf.URI != "mongodb+srv://user:pw@localhost:27017" {
			t.Errorf("unexpected URI: %s", conf.URI)
		}
		if conf.Timeout != 30 || conf.MaxPoolSize != 8 || conf.DBNamePrefix != "test_" || !conf.RunIndexCreation || !conf.NoCursorTimeout {
			t.Errorf("unexpected config: %+v", conf)
		}
		if len(conf.InstanceIDs) != 1 || conf.InstanceIDs[0] != "inst1" {
			t.Errorf("unexpected instance IDs: %v", conf.InstanceIDs)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic")
			}
		}()
		DBConfigFromYamlObj(DBConfigYaml{ConnectionStr: "localhost:27017"}, nil)
	})
}
