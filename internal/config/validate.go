package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStations(); err != nil {
		return err
	}
	return c.validateOperators()
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	return nil
}

func (c *Config) validateStations() error {
	ids := make(map[int64]struct{}, len(c.Stations))
	names := make(map[string]struct{}, len(c.Stations))
	for _, station := range c.Stations {
		if station.ID <= 0 {
			return fmt.Errorf("stations: id must be positive, got %d", station.ID)
		}
		if station.Name == "" {
			return fmt.Errorf("stations: station %d has no name", station.ID)
		}
		if _, dup := ids[station.ID]; dup {
			return fmt.Errorf("stations: duplicate id %d", station.ID)
		}
		if _, dup := names[station.Name]; dup {
			return fmt.Errorf("stations: duplicate name %q", station.Name)
		}
		ids[station.ID] = struct{}{}
		names[station.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateOperators() error {
	stationIDs := make(map[int64]struct{}, len(c.Stations))
	for _, station := range c.Stations {
		stationIDs[station.ID] = struct{}{}
	}

	ids := make(map[int64]struct{}, len(c.Operators))
	codes := make(map[string]struct{}, len(c.Operators))
	for _, operator := range c.Operators {
		if operator.ID <= 0 {
			return fmt.Errorf("operators: id must be positive, got %d", operator.ID)
		}
		if operator.Code == "" {
			return fmt.Errorf("operators: operator %d has no access code", operator.ID)
		}
		if operator.Name == "" {
			return fmt.Errorf("operators: operator %d has no name", operator.ID)
		}
		if _, dup := ids[operator.ID]; dup {
			return fmt.Errorf("operators: duplicate id %d", operator.ID)
		}
		if _, dup := codes[operator.Code]; dup {
			return fmt.Errorf("operators: duplicate code %q", operator.Code)
		}
		if operator.StationID != 0 {
			if _, ok := stationIDs[operator.StationID]; !ok {
				return fmt.Errorf("operators: operator %d references unknown station %d", operator.ID, operator.StationID)
			}
		}
		ids[operator.ID] = struct{}{}
		codes[operator.Code] = struct{}{}
	}
	return nil
}
