package catalog

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()

	return Paths{
		Spells: writeTable(t, dir, "spells.csv",
			"id,name,ptype,phys_min,phys_max,fire_min,fire_max,cold_min,cold_max,light_min,light_max,chaos_min,chaos_max,speed,cast_time\n"+
				"fireball,Fireball,3,0,0,10,10,0,0,0,0,0,0,300,500\n"+
				"frostbolt,Frostbolt,4,0,0,0,0,4,8,0,0,0,0,250,700\n"),
		Creatures: writeTable(t, dir, "creatures.csv",
			"id,name,tile,min_life,max_life,res_phys,res_fire,res_cold,res_light,res_chaos,pattern,speed,spell,treasure_class,color,scale\n"+
				"vortex,Vortex,9,10,14,50,0,0,0,0,glide,20,fireball,tc_common,1 0.9 0.6 1,1.0\n"),
		Items: writeTable(t, dir, "items.csv",
			"id,name,class,type,tile,shadow,shadow_scale,width,height,color,scale,can_drop,stack_size,base_value,edmg_min,edmg_max,pdmg_min,pdmg_max,description\n"+
				"blaster,Blaster,weapon,gun,12,2,1.0,2,2,1 1 1 1,0.5,1,1,10,1,4,2,5,A trusty blaster\n"+
				"life_orb,Life Orb,powerup,orb,14,2,1.0,1,1,1 0.4 0.4 1,0.5,1,1,8,0,0,0,0,Restores life\n"),
		Transitions: writeTable(t, dir, "transitions.csv",
			"id,name,from_map,from_x,from_y,to_map,to_x,to_y\n"+
				"t1,Cave Mouth,lobby,100,120,cave,500,400\n"),
		Populations: writeTable(t, dir, "populations.csv",
			"map,creature,min_count,max_count,x,y,spacing\n"+
				"cave,vortex,3,5,300,350,40\n"),
		TreasureClasses: writeTable(t, dir, "treasure_classes.csv",
			"class,item,chance\n"+
				"tc_common,blaster,0.25\n"+
				"tc_common,life_orb,0.5\n"),
	}
}

func TestLoad(t *testing.T) {
	set, err := Load(testPaths(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spell, ok := set.Spell("fireball")
	if !ok {
		t.Fatal("fireball not loaded")
	}
	testutil.AssertEqual(t, "fire min", spell.Min[DamageFire], 10)
	testutil.AssertEqual(t, "speed", spell.Speed, 300)
	testutil.AssertEqual(t, "cast time", spell.CastTime, 500)

	creature, ok := set.Creature("vortex")
	if !ok {
		t.Fatal("vortex not loaded")
	}
	testutil.AssertEqual(t, "phys resistance", creature.Resistance[DamagePhysical], 50)
	testutil.AssertEqual(t, "pattern", creature.Pattern, "glide")
	testutil.AssertEqual(t, "treasure class", creature.TreasureClass, "tc_common")

	item, ok := set.BaseItem("blaster")
	if !ok {
		t.Fatal("blaster not loaded")
	}
	testutil.AssertEqual(t, "footprint width", item.Width, 2)
	testutil.AssertEqual(t, "can drop", item.CanDrop, true)

	testutil.AssertEqual(t, "lobby transitions", len(set.Transitions("lobby")), 1)
	testutil.AssertEqual(t, "cave populations", len(set.Populations("cave")), 1)

	tc, ok := set.TreasureClass("tc_common")
	if !ok {
		t.Fatal("tc_common not loaded")
	}
	testutil.AssertEqual(t, "treasure entries", len(tc.Entries), 2)
}

func TestLoadMissingEntry(t *testing.T) {
	set, err := Load(testPaths(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := set.Spell("nonexistent"); ok {
		t.Error("expected missing spell to report absence")
	}
	if _, ok := set.Creature("nonexistent"); ok {
		t.Error("expected missing creature to report absence")
	}
}

func TestCreatureInstantiate(t *testing.T) {
	creature := &Creature{ID: "imp", MinLife: 10, MaxLife: 14}
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 50; i++ {
		inst := creature.Instantiate(rng)
		if inst.Life < 10 || inst.Life > 14 {
			t.Fatalf("life %d outside [10,14]", inst.Life)
		}
	}
}

func TestLoadBadTable(t *testing.T) {
	dir := t.TempDir()
	paths := testPaths(t)
	paths.Spells = writeTable(t, dir, "bad.csv",
		"id,name\nfireball,Fireball\n")

	if _, err := Load(paths); err == nil {
		t.Error("expected error for truncated spell row")
	}
}
