package skills

import "github.com/qninhdt/aethelgard/server/internal/rpg"

// Warriors spend stamina on physical feats.
var warrior = []rpg.Skill{
	{ID: "w_s_1", Name: "Heavy Strike", Tier: rpg.TierSimple, Description: "A basic attack with full strength.", Class: rpg.ClassWarrior, ManaCost: 3, Damage: "1d8+Str", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},
	{ID: "w_s_2", Name: "Block", Tier: rpg.TierSimple, Description: "Reduces the damage of the next attack.", Class: rpg.ClassWarrior, ManaCost: 2, Type: rpg.SkillUtility, Target: rpg.TargetSelf, Effect: "Defense +5"},
	{ID: "w_s_3", Name: "Shove", Tier: rpg.TierSimple, Description: "Pushes the enemy away.", Class: rpg.ClassWarrior, ManaCost: 3, Damage: "1d4", Type: rpg.SkillPhysical, Target: rpg.TargetSingle, Effect: "Knockback"},
	{ID: "w_s_4", Name: "War Cry", Tier: rpg.TierSimple, Description: "Slightly raises attack.", Class: rpg.ClassWarrior, ManaCost: 5, Type: rpg.SkillUtility, Target: rpg.TargetSelf, Effect: "Strength +2"},
	{ID: "w_s_5", Name: "Charge", Tier: rpg.TierSimple, Description: "Rushes toward the target.", Class: rpg.ClassWarrior, ManaCost: 4, Damage: "1d6", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},
	{ID: "w_s_6", Name: "Side Slash", Tier: rpg.TierSimple, Description: "Hits adjacent enemies.", Class: rpg.ClassWarrior, ManaCost: 5, Damage: "1d6 (x2)", Type: rpg.SkillPhysical, Target: rpg.TargetArea},
	{ID: "w_s_7", Name: "Defensive Stance", Tier: rpg.TierSimple, Description: "Trades attack for defense.", Class: rpg.ClassWarrior, ManaCost: 0, Type: rpg.SkillUtility, Target: rpg.TargetSelf},
	{ID: "w_s_8", Name: "Headbutt", Tier: rpg.TierSimple, Description: "May stun, but hurts yourself.", Class: rpg.ClassWarrior, ManaCost: 4, Damage: "1d6", Type: rpg.SkillPhysical, Target: rpg.TargetSingle, Effect: "Stun"},
	{ID: "w_s_9", Name: "Spartan Kick", Tier: rpg.TierSimple, Description: "Kicks the enemy far away.", Class: rpg.ClassWarrior, ManaCost: 4, Damage: "1d8", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},
	{ID: "w_s_10", Name: "Taunt", Tier: rpg.TierSimple, Description: "Draws the enemies' attention.", Class: rpg.ClassWarrior, ManaCost: 2, Type: rpg.SkillUtility, Target: rpg.TargetArea},

	{ID: "w_m_1", Name: "Whirlwind", Tier: rpg.TierMedium, Description: "Spins, hitting everyone around.", Class: rpg.ClassWarrior, ManaCost: 10, Damage: "2d6 Aoe", Type: rpg.SkillPhysical, Target: rpg.TargetArea},
	{ID: "w_m_2", Name: "Seismic Blow", Tier: rpg.TierMedium, Description: "Cracks the ground and stuns.", Class: rpg.ClassWarrior, ManaCost: 12, Damage: "1d10", Type: rpg.SkillPhysical, Target: rpg.TargetArea, Effect: "Stun"},
	{ID: "w_m_3", Name: "Berserker", Tier: rpg.TierMedium, Description: "Doubles damage, drops defense to zero.", Class: rpg.ClassWarrior, ManaCost: 10, Type: rpg.SkillUtility, Target: rpg.TargetSelf, Effect: "Damage x2"},
	{ID: "w_m_4", Name: "Iron Skin", Tier: rpg.TierMedium, Description: "Greatly reduces physical damage.", Class: rpg.ClassWarrior, ManaCost: 8, Type: rpg.SkillUtility, Target: rpg.TargetSelf, Effect: "Defense +10"},
	{ID: "w_m_5", Name: "Execution", Tier: rpg.TierMedium, Description: "Kills enemies with low HP.", Class: rpg.ClassWarrior, ManaCost: 12, Damage: "4d8", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},

	{ID: "w_a_1", Name: "Avatar of War", Tier: rpg.TierAdvanced, Description: "Becomes unbeatable for 3 turns.", Class: rpg.ClassWarrior, ManaCost: 20, Type: rpg.SkillUtility, Target: rpg.TargetSelf, Effect: "Invulnerable"},
	{ID: "w_a_2", Name: "Blade of Judgement", Tier: rpg.TierAdvanced, Description: "Massive holy damage.", Class: rpg.ClassWarrior, ManaCost: 25, Damage: "10d10", Type: rpg.SkillMagical, Target: rpg.TargetSingle},
	{ID: "w_a_3", Name: "Earthquake", Tier: rpg.TierAdvanced, Description: "Global area damage.", Class: rpg.ClassWarrior, ManaCost: 25, Damage: "6d8", Type: rpg.SkillPhysical, Target: rpg.TargetArea},
	{ID: "w_a_4", Name: "Immortality", Tier: rpg.TierAdvanced, Description: "Cannot die for 5 turns.", Class: rpg.ClassWarrior, ManaCost: 30, Type: rpg.SkillUtility, Target: rpg.TargetSelf},
	{ID: "w_a_5", Name: "Dimensional Strike", Tier: rpg.TierAdvanced, Description: "Cuts the fabric of reality.", Class: rpg.ClassWarrior, ManaCost: 22, Damage: "8d8", Type: rpg.SkillMagical, Target: rpg.TargetSingle},
}

// Mages pay high mana costs for high effect.
var mage = []rpg.Skill{
	{ID: "m_s_1", Name: "Magic Missile", Tier: rpg.TierSimple, Description: "Basic homing arcane damage.", Class: rpg.ClassMage, ManaCost: 2, Damage: "1d4+1", Type: rpg.SkillMagical, Target: rpg.TargetSingle},
	{ID: "m_s_2", Name: "Shocking Grasp", Tier: rpg.TierSimple, Description: "Electric damage on touch.", Class: rpg.ClassMage, ManaCost: 3, Damage: "1d8", Type: rpg.SkillMagical, Target: rpg.TargetSingle},
	{ID: "m_s_3", Name: "Light", Tier: rpg.TierSimple, Description: "Lights up dark areas.", Class: rpg.ClassMage, ManaCost: 1, Type: rpg.SkillUtility, Target: rpg.TargetArea},
	{ID: "m_s_4", Name: "Arcane Shield", Tier: rpg.TierSimple, Description: "Blocks a little damage.", Class: rpg.ClassMage, ManaCost: 5, Type: rpg.SkillUtility, Target: rpg.TargetSelf, Effect: "+5 Def"},
	{ID: "m_s_5", Name: "Gust of Wind", Tier: rpg.TierSimple, Description: "Pushes enemies.", Class: rpg.ClassMage, ManaCost: 4, Damage: "1d6", Type: rpg.SkillMagical, Target: rpg.TargetArea},
	{ID: "m_s_6", Name: "Small Flame", Tier: rpg.TierSimple, Description: "Lights torches or burns lightly.", Class: rpg.ClassMage, ManaCost: 1, Damage: "1d4", Type: rpg.SkillMagical, Target: rpg.TargetSingle},
	{ID: "m_s_7", Name: "Ray of Frost", Tier: rpg.TierSimple, Description: "Slows the target.", Class: rpg.ClassMage, ManaCost: 3, Damage: "1d6", Type: rpg.SkillMagical, Target: rpg.TargetSingle, Effect: "Slow"},
	{ID: "m_s_15", Name: "Fire Bolt", Tier: rpg.TierSimple, Description: "Ranged fire attack.", Class: rpg.ClassMage, ManaCost: 4, Damage: "1d10", Type: rpg.SkillMagical, Target: rpg.TargetSingle},
	{ID: "m_s_17", Name: "Grease", Tier: rpg.TierSimple, Description: "Creates slippery ground.", Class: rpg.ClassMage, ManaCost: 5, Type: rpg.SkillUtility, Target: rpg.TargetArea, Effect: "Prone"},
	{ID: "m_s_20", Name: "Spark", Tier: rpg.TierSimple, Description: "Light electric damage.", Class: rpg.ClassMage, ManaCost: 2, Damage: "1d6", Type: rpg.SkillMagical, Target: rpg.TargetSingle},

	{ID: "m_m_1", Name: "Fireball", Tier: rpg.TierMedium, Description: "The classic area explosion.", Class: rpg.ClassMage, ManaCost: 15, Damage: "8d6", Type: rpg.SkillMagical, Target: rpg.TargetArea},
	{ID: "m_m_2", Name: "Lightning Bolt", Tier: rpg.TierMedium, Description: "Damage in a straight line.", Class: rpg.ClassMage, ManaCost: 12, Damage: "6d6", Type: rpg.SkillMagical, Target: rpg.TargetArea},
	{ID: "m_m_3", Name: "Fly", Tier: rpg.TierMedium, Description: "Allows flight for a while.", Class: rpg.ClassMage, ManaCost: 10, Type: rpg.SkillUtility, Target: rpg.TargetSelf},
	{ID: "m_m_4", Name: "Invisibility", Tier: rpg.TierMedium, Description: "Invisible until attacking.", Class: rpg.ClassMage, ManaCost: 10, Type: rpg.SkillUtility, Target: rpg.TargetSelf},
	{ID: "m_m_27", Name: "Cure Wounds", Tier: rpg.TierMedium, Description: "Medium healing spell.", Class: rpg.ClassMage, ManaCost: 10, Damage: "-4d4", Type: rpg.SkillHeal, Target: rpg.TargetSingle},

	{ID: "m_a_1", Name: "Meteor Swarm", Tier: rpg.TierAdvanced, Description: "Total area destruction.", Class: rpg.ClassMage, ManaCost: 40, Damage: "20d6", Type: rpg.SkillMagical, Target: rpg.TargetArea},
	{ID: "m_a_2", Name: "Time Stop", Tier: rpg.TierAdvanced, Description: "Gains 3 extra turns.", Class: rpg.ClassMage, ManaCost: 50, Type: rpg.SkillUtility, Target: rpg.TargetSelf},
	{ID: "m_a_3", Name: "Wish", Tier: rpg.TierAdvanced, Description: "Alters reality (limited).", Class: rpg.ClassMage, ManaCost: 60, Type: rpg.SkillUtility, Target: rpg.TargetArea},
	{ID: "m_a_4", Name: "Power Word: Kill", Tier: rpg.TierAdvanced, Description: "Kills an enemy instantly.", Class: rpg.ClassMage, ManaCost: 45, Damage: "Infinity", Type: rpg.SkillMagical, Target: rpg.TargetSingle},
	{ID: "m_a_5", Name: "True Resurrection", Tier: rpg.TierAdvanced, Description: "Brings someone back to life.", Class: rpg.ClassMage, ManaCost: 50, Type: rpg.SkillHeal, Target: rpg.TargetSingle},
}

// Rogues spend energy on dirty tricks.
var rogue = []rpg.Skill{
	{ID: "r_s_1", Name: "Sneak Attack", Tier: rpg.TierSimple, Description: "Extra damage while hidden.", Class: rpg.ClassRogue, ManaCost: 3, Damage: "2d6", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},
	{ID: "r_s_2", Name: "Pickpocket", Tier: rpg.TierSimple, Description: "Steals gold or an item.", Class: rpg.ClassRogue, ManaCost: 2, Type: rpg.SkillUtility, Target: rpg.TargetSingle},
	{ID: "r_s_3", Name: "Poisoned Dagger", Tier: rpg.TierSimple, Description: "Poisons the target.", Class: rpg.ClassRogue, ManaCost: 3, Damage: "1d4", Type: rpg.SkillPhysical, Target: rpg.TargetSingle, Effect: "Poison"},
	{ID: "r_s_4", Name: "Hide", Tier: rpg.TierSimple, Description: "Becomes hard to see.", Class: rpg.ClassRogue, ManaCost: 2, Type: rpg.SkillUtility, Target: rpg.TargetSelf},
	{ID: "r_s_5", Name: "Aimed Shot", Tier: rpg.TierSimple, Description: "A highly accurate arrow.", Class: rpg.ClassRogue, ManaCost: 3, Damage: "1d8+2", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},
	{ID: "r_s_6", Name: "Disarm Trap", Tier: rpg.TierSimple, Description: "Handles mechanisms.", Class: rpg.ClassRogue, ManaCost: 1, Type: rpg.SkillUtility, Target: rpg.TargetSingle},
	{ID: "r_s_7", Name: "Blind", Tier: rpg.TierSimple, Description: "Throws sand in the eyes.", Class: rpg.ClassRogue, ManaCost: 3, Type: rpg.SkillUtility, Target: rpg.TargetSingle, Effect: "Blind"},
	{ID: "r_s_8", Name: "Acrobatics", Tier: rpg.TierSimple, Description: "Dodges or moves quickly.", Class: rpg.ClassRogue, ManaCost: 2, Type: rpg.SkillUtility, Target: rpg.TargetSelf},

	{ID: "r_m_1", Name: "Arrow Rain", Tier: rpg.TierMedium, Description: "Shoots multiple targets.", Class: rpg.ClassRogue, ManaCost: 8, Damage: "3d6", Type: rpg.SkillPhysical, Target: rpg.TargetArea},
	{ID: "r_m_2", Name: "Jugular Strike", Tier: rpg.TierMedium, Description: "Causes heavy bleeding.", Class: rpg.ClassRogue, ManaCost: 7, Damage: "1d8", Type: rpg.SkillPhysical, Target: rpg.TargetSingle, Effect: "Bleed"},
	{ID: "r_m_3", Name: "Smoke Bomb", Tier: rpg.TierMedium, Description: "Flees combat or confuses.", Class: rpg.ClassRogue, ManaCost: 6, Type: rpg.SkillUtility, Target: rpg.TargetArea},
	{ID: "r_m_4", Name: "Assassinate", Tier: rpg.TierMedium, Description: "Massive damage out of combat.", Class: rpg.ClassRogue, ManaCost: 10, Damage: "6d6", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},

	{ID: "r_a_1", Name: "Dancing Shadow", Tier: rpg.TierAdvanced, Description: "Attacks every enemy.", Class: rpg.ClassRogue, ManaCost: 15, Damage: "5d8", Type: rpg.SkillPhysical, Target: rpg.TargetArea},
	{ID: "r_a_2", Name: "Touch of Death", Tier: rpg.TierAdvanced, Description: "Chance to kill instantly.", Class: rpg.ClassRogue, ManaCost: 18, Damage: "10d6", Type: rpg.SkillPhysical, Target: rpg.TargetSingle},
	{ID: "r_a_3", Name: "Master of Disguise", Tier: rpg.TierAdvanced, Description: "Becomes anyone.", Class: rpg.ClassRogue, ManaCost: 12, Type: rpg.SkillUtility, Target: rpg.TargetSelf},
	{ID: "r_a_4", Name: "Legendary Heist", Tier: rpg.TierAdvanced, Description: "Steals even what is equipped.", Class: rpg.ClassRogue, ManaCost: 20, Type: rpg.SkillUtility, Target: rpg.TargetSingle},
}
